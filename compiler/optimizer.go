package compiler

import "github.com/vmrex/vmrex/bytecode"

// maxJumpChain bounds jump-chain following so a pathological (and, in a
// correctly emitted program, impossible) GOTO cycle can't hang the
// optimizer.
const maxJumpChain = 4096

// threadJumps is the LevelBasic peephole pass: every offset operand that
// points at a plain GOTO is rewritten to point at that GOTO's own target,
// collapsing chains introduced by the direct Thompson lowering (a
// sequence of groups/alternation branches each end with their own GOTO
// to a shared continuation).
func threadJumps(prog *bytecode.Program) {
	pc := 0
	for pc < prog.Len() {
		op := prog.ReadOp(pc)
		switch op {
		case bytecode.OpGoto, bytecode.OpLookahead, bytecode.OpNegativeLookahead,
			bytecode.OpLookbehind, bytecode.OpNegativeLookbehind:
			target := prog.ReadOffset(pc)
			resolved := resolveChain(prog, target)
			if resolved != target {
				prog.PatchOffset(pc+1, resolved)
			}
		case bytecode.OpSplit, bytecode.OpSplitGreedy, bytecode.OpSplitLazy, bytecode.OpSplitPossessive:
			t1, t2 := prog.ReadSplitOffsets(pc)
			r1, r2 := resolveChain(prog, t1), resolveChain(prog, t2)
			if r1 != t1 {
				prog.PatchOffset(pc+1, r1)
			}
			if r2 != t2 {
				prog.PatchOffset(pc+5, r2)
			}
		}
		pc += prog.InstrLen(pc)
	}
}

// resolveChain follows a target through any leading run of plain GOTOs,
// returning the first non-GOTO instruction's PC.
func resolveChain(prog *bytecode.Program, target int) int {
	for hops := 0; hops < maxJumpChain; hops++ {
		if target < 0 || target >= prog.Len() || prog.ReadOp(target) != bytecode.OpGoto {
			return target
		}
		next := prog.ReadOffset(target)
		if next == target {
			return target // self-jump guard, never emitted but safe to stop on
		}
		target = next
	}
	return target
}

// removeTrailingDeadCode is LevelBasic's second peephole pass: a flood
// fill over fallthrough and jump edges starting at PC 0 finds every
// reachable instruction, and any suffix nothing jumps into is cut from
// the buffer. Compile always emits a single terminal MATCH as the last
// instruction of the main program today, so in practice this pass is a
// no-op safety net — but it's the general, correct way to express "drop
// the unreachable tail after a MATCH" for any bytecode a future emission
// path might produce. Only a trailing suffix is ever removed: trimming
// from the middle would require repatching every offset downstream of
// the cut, which a straight-line Thompson lowering never leaves a gap
// for in the first place.
func removeTrailingDeadCode(prog *bytecode.Program) {
	reachable := reachableSet(prog)

	end := 0
	for pc := 0; pc < prog.Len(); pc += prog.InstrLen(pc) {
		if reachable[pc] {
			end = pc + prog.InstrLen(pc)
		}
	}
	if end < prog.Len() {
		prog.Truncate(end)
	}
}

// reachableSet walks every fallthrough and jump edge reachable from PC 0.
// MATCH and AssertEnd are dead ends: MATCH terminates the thread, and the
// bytes physically following AssertEnd in the buffer belong to the
// lookaround's own skip-GOTO target, already reached via that GOTO's own
// edge rather than AssertEnd's fallthrough.
func reachableSet(prog *bytecode.Program) map[int]bool {
	reachable := make(map[int]bool)
	var visit func(pc int)
	visit = func(pc int) {
		if pc < 0 || pc >= prog.Len() || reachable[pc] {
			return
		}
		reachable[pc] = true

		switch prog.ReadOp(pc) {
		case bytecode.OpMatch, bytecode.OpAssertEnd:
			// terminal: no outgoing edges to follow
		case bytecode.OpGoto:
			visit(prog.ReadOffset(pc))
		case bytecode.OpSplit, bytecode.OpSplitGreedy, bytecode.OpSplitLazy, bytecode.OpSplitPossessive:
			t1, t2 := prog.ReadSplitOffsets(pc)
			visit(t1)
			visit(t2)
		case bytecode.OpLookahead, bytecode.OpNegativeLookahead,
			bytecode.OpLookbehind, bytecode.OpNegativeLookbehind:
			visit(prog.ReadOffset(pc))
			visit(pc + prog.InstrLen(pc))
		default:
			visit(pc + prog.InstrLen(pc))
		}
	}
	visit(0)
	return reachable
}

// foldCharClasses is LevelBasic's third peephole pass: a maximal run of
// two or more adjacent CharClass/CharClassInv instructions that all test
// the identical bit table is rewritten to share one pooled copy of that
// table via CharClassRef/CharClassInvRef, instead of each instruction
// carrying its own redundant 32-byte copy. This is the pattern
// emitRepeat's mandatory-copy unrolling produces — e.g. [a-z]{3} lowers
// to three back-to-back CharClass instructions against the same table.
// Each instruction still consumes exactly one input byte and keeps its
// original length and PC, so no jump offset in the program ever needs
// repatching.
func foldCharClasses(prog *bytecode.Program) {
	pc := 0
	for pc < prog.Len() {
		op := prog.ReadOp(pc)
		if op != bytecode.OpCharClass && op != bytecode.OpCharClassInv {
			pc += prog.InstrLen(pc)
			continue
		}

		table := prog.ReadCharClass(pc)
		runEnd := pc + prog.InstrLen(pc)
		for runEnd < prog.Len() &&
			prog.ReadOp(runEnd) == op &&
			prog.ReadCharClass(runEnd) == table {
			runEnd += prog.InstrLen(runEnd)
		}

		if runEnd > pc+prog.InstrLen(pc) {
			refOp := bytecode.OpCharClassRef
			if op == bytecode.OpCharClassInv {
				refOp = bytecode.OpCharClassInvRef
			}
			idx := prog.InternClassTable(table)
			for p := pc; p < runEnd; p += prog.InstrLen(p) {
				prog.PatchCharClassRef(p, refOp, idx)
			}
		}
		pc = runEnd
	}
}
