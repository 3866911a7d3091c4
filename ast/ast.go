// Package ast defines the arena-owned abstract syntax tree the parser
// builds and the compiler lowers to bytecode.
//
// Nodes live in a single flat slice inside a Tree and reference their
// children by NodeID (an index into that slice) rather than by pointer.
// This follows the arena design spec.md calls for: no recursive
// destructors, no per-node heap allocation, and a tree that is freed in
// O(1) (by dropping the arena) regardless of depth.
package ast

// NodeID indexes a Node inside a Tree's arena. NilNode (-1) never refers
// to a real node.
type NodeID int32

// NilNode is the not-present sentinel for optional node references.
const NilNode NodeID = -1

// Kind identifies what a Node represents.
type Kind uint8

//go:generate stringer -type=Kind
const (
	KindEmpty Kind = iota // matches the empty string; produced by e.g. "(?:)" or an empty alternation branch

	KindChar  // a literal byte (Char)
	KindAny   // '.' (DotAll controls whether it includes '\n', resolved at compile time)
	KindClass // a character class (Set, Inverted)

	KindConcat // sequence of Children, matched in order
	KindAlt    // Children tried in order, first full match wins (leftmost-priority)

	KindRepeat // Child repeated [Min, Max] times (Max == -1: unbounded); Modifier controls greediness

	KindCapture // numbered capturing group; Index is 1-based
	KindGroup   // non-capturing group (?:...)

	KindLineStart   // ^
	KindLineEnd     // $
	KindStringStart // \A-equivalent: anchors spec.md assigns to ^ in non-multiline mode are resolved by the compiler, not here
	KindStringEnd

	KindWordBoundary    // \b
	KindNotWordBoundary // \B

	KindLookahead     // (?=...)
	KindNegLookahead  // (?!...)
	KindLookbehind    // (?<=...)
	KindNegLookbehind // (?<!...)

	KindBackref // \1 .. \9; Index is 1-based; the compiler picks case-insensitive comparison from its own CaseInsensitive option
)

// Modifier mirrors lexer.Modifier for quantifier greediness, kept as its
// own type so ast does not depend on lexer.
type Modifier uint8

const (
	Greedy Modifier = iota
	Lazy
	Possessive
)

// Node is one arena slot. Only the fields relevant to Kind are meaningful;
// the zero value of irrelevant fields is never inspected.
type Node struct {
	Kind Kind

	Char byte // KindChar

	Set      [32]byte // KindClass: inline bit table, same layout as bitset.CharSet
	Inverted bool     // KindClass

	Children []NodeID // KindConcat, KindAlt

	Child    NodeID   // KindRepeat, KindCapture, KindGroup, lookaround kinds
	Min, Max int      // KindRepeat; Max == -1 means unbounded
	Modifier Modifier // KindRepeat

	Index           int // KindCapture (1-based group number), KindBackref (1-based target)
	CaseInsensitive bool // KindBackref
}

// Tree is an arena of Nodes plus the root and total capture-group count
// discovered while parsing.
type Tree struct {
	Nodes        []Node
	Root         NodeID
	CaptureCount int // number of capturing groups, i.e. highest Index assigned
}

// New creates an empty Tree with room for capacity nodes.
func New(capacity int) *Tree {
	return &Tree{Nodes: make([]Node, 0, capacity), Root: NilNode}
}

// Add appends n to the arena and returns its NodeID.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, n)
	return id
}

// Get returns the Node at id. Panics on an out-of-range id, matching
// slice-index semantics — arena IDs are only ever produced by Add, so an
// invalid ID indicates a compiler bug, not bad input.
func (t *Tree) Get(id NodeID) *Node {
	return &t.Nodes[id]
}
