package compiler

// Level selects how aggressively Compile rewrites the straightforward
// lowering of the AST into bytecode.
type Level uint8

const (
	// LevelNone emits the direct Thompson-construction lowering with no
	// further passes.
	LevelNone Level = iota

	// LevelBasic runs peephole passes over the emitted program: jump
	// threading collapses chains of GOTOs (and GOTO-to-split) down to
	// their final target, removing dispatch hops the naive lowering
	// introduces around every quantifier and group boundary; a dead-code
	// pass trims any unreachable tail after a MATCH; and a class-folding
	// pass pools the bit table behind runs of adjacent CharClass
	// instructions that test the identical class (the shape a quantifier
	// like [a-z]{3} unrolls into), so only one copy of the table is kept.
	LevelBasic

	// LevelAggressive additionally extracts a literal prefilter (a
	// required prefix, or a bounded set of alternatives) from the AST,
	// so the facade can skip straight to candidate start positions
	// instead of invoking the VM at every byte offset.
	LevelAggressive
)

// Options controls how an ast.Tree is lowered to bytecode.
type Options struct {
	OptLevel        Level
	CaseInsensitive bool
	Multiline       bool
	DotAll          bool
}
