// Package compiler lowers an ast.Tree into a bytecode.Program via a
// direct Thompson-style construction (one emit method per ast.Kind),
// then optionally runs peephole and prefilter-extraction passes
// depending on the requested optimization Level.
package compiler

import (
	"github.com/vmrex/vmrex/ast"
	"github.com/vmrex/vmrex/bytecode"
	"github.com/vmrex/vmrex/internal/bitset"
	"github.com/vmrex/vmrex/literal"
)

const maxCaptures = 9

// Result bundles the compiled program with the optional literal
// prefilter an aggressive compile extracts.
type Result struct {
	Program   *bytecode.Program
	Prefilter literal.Prefilter // nil unless OptLevel == LevelAggressive and a prefilter applies
}

type compiler struct {
	tree *ast.Tree
	prog *bytecode.Program
	opts Options
}

// Compile lowers tree into a bytecode.Program per opts.
func Compile(tree *ast.Tree, opts Options) (*Result, error) {
	if tree.CaptureCount > maxCaptures {
		return nil, &Error{Err: ErrTooManyCaptures}
	}

	c := &compiler{
		tree: tree,
		prog: bytecode.New(64 + len(tree.Nodes)*4),
		opts: opts,
	}
	c.prog.NumCaptures = tree.CaptureCount

	c.prog.EmitByte(bytecode.OpSaveStart, 0)
	c.emit(tree.Root)
	c.prog.EmitByte(bytecode.OpSaveEnd, 0)
	c.prog.EmitOp(bytecode.OpMatch)

	if opts.OptLevel >= LevelBasic {
		threadJumps(c.prog)
		removeTrailingDeadCode(c.prog)
		foldCharClasses(c.prog)
	}

	result := &Result{Program: c.prog}
	if opts.OptLevel >= LevelAggressive {
		result.Prefilter = literal.Build(tree, opts.CaseInsensitive)
	}
	return result, nil
}

func (c *compiler) emit(id ast.NodeID) {
	n := c.tree.Get(id)
	switch n.Kind {
	case ast.KindEmpty:
		// zero-width, nothing to emit

	case ast.KindChar:
		c.emitChar(n.Char)

	case ast.KindAny:
		if c.opts.DotAll {
			c.prog.EmitOp(bytecode.OpAnyChar)
		} else {
			c.prog.EmitOp(bytecode.OpAny)
		}

	case ast.KindClass:
		c.emitClass(n.Set, n.Inverted)

	case ast.KindConcat:
		for _, child := range n.Children {
			c.emit(child)
		}

	case ast.KindAlt:
		c.emitAlt(n.Children)

	case ast.KindRepeat:
		c.emitRepeat(n.Child, n.Min, n.Max, n.Modifier)

	case ast.KindCapture:
		c.prog.EmitByte(bytecode.OpSaveStart, byte(n.Index))
		c.emit(n.Child)
		c.prog.EmitByte(bytecode.OpSaveEnd, byte(n.Index))

	case ast.KindGroup:
		c.emit(n.Child)

	case ast.KindLineStart:
		if c.opts.Multiline {
			c.prog.EmitOp(bytecode.OpLineStart)
		} else {
			c.prog.EmitOp(bytecode.OpStringStart)
		}
	case ast.KindLineEnd:
		if c.opts.Multiline {
			c.prog.EmitOp(bytecode.OpLineEnd)
		} else {
			c.prog.EmitOp(bytecode.OpStringEnd)
		}
	case ast.KindStringStart:
		c.prog.EmitOp(bytecode.OpStringStart)
	case ast.KindStringEnd:
		c.prog.EmitOp(bytecode.OpStringEnd)

	case ast.KindWordBoundary:
		c.prog.EmitOp(bytecode.OpWordBoundary)
	case ast.KindNotWordBoundary:
		c.prog.EmitOp(bytecode.OpNotWordBoundary)

	case ast.KindLookahead:
		c.emitLookaround(bytecode.OpLookahead, n.Child)
	case ast.KindNegLookahead:
		c.emitLookaround(bytecode.OpNegativeLookahead, n.Child)
	case ast.KindLookbehind:
		c.emitLookaround(bytecode.OpLookbehind, reverseForLookbehind(c.tree, n.Child))
	case ast.KindNegLookbehind:
		c.emitLookaround(bytecode.OpNegativeLookbehind, reverseForLookbehind(c.tree, n.Child))

	case ast.KindBackref:
		op := bytecode.OpBackref
		if c.opts.CaseInsensitive {
			op = bytecode.OpBackrefInsensitive
		}
		c.prog.EmitByte(op, byte(n.Index))

	default:
		panic("compiler: unhandled ast.Kind")
	}
}

// emitChar emits a literal byte match, folding both cases into a small
// character class when CaseInsensitive is set and the byte is an ASCII
// letter.
func (c *compiler) emitChar(ch byte) {
	if c.opts.CaseInsensitive && isASCIILetter(ch) {
		var set bitset.CharSet
		set.Set(toLower(ch))
		set.Set(toUpper(ch))
		c.prog.EmitCharClass(bytecode.OpCharClass, [32]byte(set))
		return
	}
	c.prog.EmitByte(bytecode.OpChar, ch)
}

// emitClass emits a class's bit table, folding in the opposite-case bit
// for every set ASCII letter when CaseInsensitive is set.
func (c *compiler) emitClass(table [32]byte, inverted bool) {
	set := bitset.CharSet(table)
	if c.opts.CaseInsensitive {
		set = foldCase(set)
	}
	op := bytecode.OpCharClass
	if inverted {
		op = bytecode.OpCharClassInv
	}
	c.prog.EmitCharClass(op, [32]byte(set))
}

func foldCase(set bitset.CharSet) bitset.CharSet {
	folded := set
	for ch := byte('a'); ch <= 'z'; ch++ {
		if set.Contains(ch) {
			folded.Set(toUpper(ch))
		}
	}
	for ch := byte('A'); ch <= 'Z'; ch++ {
		if set.Contains(ch) {
			folded.Set(toLower(ch))
		}
	}
	return folded
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// emitAlt lowers an alternation of n branches into a right-leaning chain
// of splits, each preferring its own branch over the rest of the chain —
// this gives leftmost-priority (branch i beats branch i+1) without
// needing a balanced tree.
func (c *compiler) emitAlt(branches []ast.NodeID) {
	var endGotos []int
	for i, branch := range branches {
		last := i == len(branches)-1
		if last {
			c.emit(branch)
			break
		}

		_, phBranch, phRest := c.prog.ReserveSplit(bytecode.OpSplit)
		branchStart := c.prog.PC()
		c.emit(branch)
		_, phEnd := c.prog.ReserveOffset(bytecode.OpGoto)
		endGotos = append(endGotos, phEnd)

		restStart := c.prog.PC()
		c.prog.PatchOffset(phBranch, branchStart)
		c.prog.PatchOffset(phRest, restStart)
	}

	end := c.prog.PC()
	for _, ph := range endGotos {
		c.prog.PatchOffset(ph, end)
	}
}

// emitRepeat lowers a {min,max} quantifier by unrolling min mandatory
// copies, then either a star-loop (max == -1, unbounded) or max-min
// independent optional copies (bounded). Flat optional copies produce
// the same greedy/lazy priority as a nested expansion would under a
// Pike-VM's thread-priority-by-insertion-order semantics, without the
// extra nesting.
func (c *compiler) emitRepeat(child ast.NodeID, min, max int, modifier ast.Modifier) {
	for i := 0; i < min; i++ {
		c.emit(child)
	}
	if max == -1 {
		c.emitStar(child, modifier)
		return
	}
	for i := 0; i < max-min; i++ {
		c.emitFork(child, modifier, false)
	}
}

func (c *compiler) emitStar(child ast.NodeID, modifier ast.Modifier) {
	c.emitFork(child, modifier, true)
}

// emitFork emits one greedy/lazy/possessive branch point around child.
// When loopBack is set, the branch's body jumps back to retry instead of
// falling through (a star loop); otherwise it is a single optional copy.
func (c *compiler) emitFork(child ast.NodeID, modifier ast.Modifier, loopBack bool) {
	op := bytecode.OpSplitGreedy
	atomic := false
	switch modifier {
	case ast.Lazy:
		op = bytecode.OpSplitLazy
	case ast.Possessive:
		op = bytecode.OpSplitPossessive
		atomic = true
	}

	splitPC, ph1, ph2 := c.prog.ReserveSplit(op)
	var phBody, phSkip int
	if modifier == ast.Lazy {
		phSkip, phBody = ph1, ph2
	} else {
		phBody, phSkip = ph1, ph2
	}

	if atomic {
		c.prog.EmitOp(bytecode.OpPushPos)
	}
	bodyStart := c.prog.PC()
	c.emit(child)
	if atomic {
		c.prog.EmitOp(bytecode.OpCheckPos)
	}
	if loopBack {
		_, ph := c.prog.ReserveOffset(bytecode.OpGoto)
		c.prog.PatchOffset(ph, splitPC)
	}

	c.prog.PatchOffset(phBody, bodyStart)
	skipTarget := c.prog.PC()
	c.prog.PatchOffset(phSkip, skipTarget)
}

// emitLookaround emits a zero-width assertion: the opcode's offset
// operand points to a sub-program terminated by AssertEnd (run by the VM
// as a nested invocation), and a GOTO immediately following skips the
// sub-program so the main thread's normal fallthrough PC lands after it.
func (c *compiler) emitLookaround(op bytecode.Op, child ast.NodeID) {
	_, phSub := c.prog.ReserveOffset(op)
	_, phSkip := c.prog.ReserveOffset(bytecode.OpGoto)

	subStart := c.prog.PC()
	c.emit(child)
	c.prog.EmitOp(bytecode.OpAssertEnd)

	afterSub := c.prog.PC()
	c.prog.PatchOffset(phSub, subStart)
	c.prog.PatchOffset(phSkip, afterSub)
}
