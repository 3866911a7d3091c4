// Package bytecode defines the flat instruction stream the compiler
// emits and the VM executes: one-byte opcode plus a statically-sized
// payload per opcode, encoded little-endian.
package bytecode

import "fmt"

// Op identifies the kind of a single bytecode instruction and determines
// the shape of the payload bytes that follow it in the stream.
type Op uint8

const (
	// OpChar consumes one byte if it equals the literal operand.
	// Payload: 1 byte (the literal).
	OpChar Op = iota

	// OpCharRange consumes one byte if lo <= b <= hi.
	// Payload: 2 bytes (lo, hi).
	OpCharRange

	// OpCharRangeInv consumes one byte if it is NOT in [lo, hi].
	// Payload: 2 bytes (lo, hi).
	OpCharRangeInv

	// OpCharClass consumes one byte if it is set in the following 32-byte
	// inline bit table.
	// Payload: 32 bytes (the table).
	OpCharClass

	// OpCharClassInv consumes one byte if it is NOT set in the following
	// 32-byte inline bit table.
	// Payload: 32 bytes (the table).
	OpCharClassInv

	// OpCharClassRef is OpCharClass with its bit table pooled: the
	// optimizer's class-folding pass rewrites a run of adjacent
	// OpCharClass instructions sharing an identical table into
	// OpCharClassRef instructions that index into Program.ClassPool
	// instead of each carrying their own copy.
	// Payload: 32 bytes (2-byte little-endian pool index, 30 bytes unused).
	OpCharClassRef

	// OpCharClassInvRef is OpCharClassRef for the inverted test, mirroring
	// OpCharClassInv the way OpCharClassRef mirrors OpCharClass.
	// Payload: 32 bytes (2-byte little-endian pool index, 30 bytes unused).
	OpCharClassInvRef

	// OpAny consumes any byte except '\n'.
	// Payload: none.
	OpAny

	// OpAnyChar consumes any byte, including '\n' (dot-all mode).
	// Payload: none.
	OpAnyChar

	// OpMatch marks a successful end of program for the current thread.
	// Payload: none.
	OpMatch

	// OpGoto unconditionally transfers control.
	// Payload: 4 bytes (signed little-endian offset, relative to the
	// instruction immediately following the payload).
	OpGoto

	// OpSplit forks the current thread into two: PC+offset1 is tried
	// first (higher priority), then PC+offset2 — the compiler emits it
	// for alternation; OpSplitGreedy/Lazy/Possessive below are the
	// quantifier-specific forms.
	// Payload: 8 bytes (two signed little-endian offsets).
	OpSplit

	// OpSplitGreedy forks preferring to repeat (loop body first, then
	// continuation). Payload: 8 bytes (loop offset, continue offset).
	OpSplitGreedy

	// OpSplitLazy forks preferring to stop (continuation first, then loop
	// body). Payload: 8 bytes (continue offset, loop offset).
	OpSplitLazy

	// OpSplitPossessive is paired with PushPos/CheckPos by the compiler
	// to make a repeat atomic: once it commits to looping or stopping it
	// never backtracks into the other branch.
	// Payload: 8 bytes (loop offset, continue offset).
	OpSplitPossessive

	// OpSaveStart records the current input position into capture slot
	// 2*n (the group's start offset).
	// Payload: 1 byte (group index, 0 = whole match).
	OpSaveStart

	// OpSaveEnd records the current input position into capture slot
	// 2*n+1 (the group's end offset).
	// Payload: 1 byte (group index, 0 = whole match).
	OpSaveEnd

	// OpLineStart asserts the current position is the start of the
	// haystack, or (multiline mode) immediately follows '\n'.
	// Payload: none.
	OpLineStart

	// OpLineEnd asserts the current position is the end of the haystack,
	// or (multiline mode) immediately precedes '\n'.
	// Payload: none.
	OpLineEnd

	// OpStringStart asserts the current position is the absolute start
	// of the haystack, regardless of multiline mode.
	// Payload: none.
	OpStringStart

	// OpStringEnd asserts the current position is the absolute end of
	// the haystack, regardless of multiline mode.
	// Payload: none.
	OpStringEnd

	// OpWordBoundary asserts a \w/non-\w transition at the current
	// position. Payload: none.
	OpWordBoundary

	// OpNotWordBoundary asserts the current position is NOT a \w/non-\w
	// transition. Payload: none.
	OpNotWordBoundary

	// OpLookahead runs the sub-program starting at PC+offset as a
	// zero-width positive lookahead assertion: a nested VM invocation
	// from the current position must find a match, and the outer thread
	// does not advance past it.
	// Payload: 4 bytes (signed little-endian offset to the sub-program).
	OpLookahead

	// OpNegativeLookahead is OpLookahead with the assertion inverted.
	// Payload: 4 bytes.
	OpNegativeLookahead

	// OpLookbehind runs the sub-program against the bytes preceding the
	// current position as a zero-width positive lookbehind assertion.
	// Payload: 4 bytes (signed little-endian offset to the sub-program).
	OpLookbehind

	// OpNegativeLookbehind is OpLookbehind with the assertion inverted.
	// Payload: 4 bytes.
	OpNegativeLookbehind

	// OpAssertEnd marks the end of a lookaround sub-program, standing in
	// for a local OpMatch so the nested VM invocation knows where to stop.
	// Payload: none.
	OpAssertEnd

	// OpBackref consumes bytes equal to the text captured by the
	// referenced group, case-sensitively.
	// Payload: 1 byte (group index, 1-9).
	OpBackref

	// OpBackrefInsensitive is OpBackref with ASCII case-folded comparison.
	// Payload: 1 byte (group index, 1-9).
	OpBackrefInsensitive

	// OpPushPos pushes the current input position onto a thread-local
	// stack, for a following OpCheckPos to compare against (possessive
	// quantifier atomicity).
	// Payload: none.
	OpPushPos

	// OpCheckPos pops the position stack and fails the thread if the
	// current input position equals the popped value, preventing an
	// atomic group from matching zero-width on a retry.
	// Payload: none.
	OpCheckPos

	numOps
)

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

var opNames = [...]string{
	OpChar:                 "Char",
	OpCharRange:             "CharRange",
	OpCharRangeInv:          "CharRangeInv",
	OpCharClass:             "CharClass",
	OpCharClassInv:          "CharClassInv",
	OpCharClassRef:          "CharClassRef",
	OpCharClassInvRef:       "CharClassInvRef",
	OpAny:                   "Any",
	OpAnyChar:               "AnyChar",
	OpMatch:                 "Match",
	OpGoto:                  "Goto",
	OpSplit:                 "Split",
	OpSplitGreedy:           "SplitGreedy",
	OpSplitLazy:             "SplitLazy",
	OpSplitPossessive:       "SplitPossessive",
	OpSaveStart:             "SaveStart",
	OpSaveEnd:               "SaveEnd",
	OpLineStart:             "LineStart",
	OpLineEnd:               "LineEnd",
	OpStringStart:           "StringStart",
	OpStringEnd:             "StringEnd",
	OpWordBoundary:          "WordBoundary",
	OpNotWordBoundary:       "NotWordBoundary",
	OpLookahead:             "Lookahead",
	OpNegativeLookahead:     "NegativeLookahead",
	OpLookbehind:            "Lookbehind",
	OpNegativeLookbehind:    "NegativeLookbehind",
	OpAssertEnd:             "AssertEnd",
	OpBackref:               "Backref",
	OpBackrefInsensitive:    "BackrefInsensitive",
	OpPushPos:               "PushPos",
	OpCheckPos:              "CheckPos",
}

// PayloadLen returns the number of payload bytes that follow op's opcode
// byte in the stream, not counting the opcode byte itself.
func PayloadLen(op Op) int {
	switch op {
	case OpChar, OpSaveStart, OpSaveEnd, OpBackref, OpBackrefInsensitive:
		return 1
	case OpCharRange, OpCharRangeInv:
		return 2
	case OpGoto, OpLookahead, OpNegativeLookahead, OpLookbehind, OpNegativeLookbehind:
		return 4
	case OpCharClass, OpCharClassInv, OpCharClassRef, OpCharClassInvRef:
		return 32
	case OpSplit, OpSplitGreedy, OpSplitLazy, OpSplitPossessive:
		return 8
	default:
		return 0
	}
}
