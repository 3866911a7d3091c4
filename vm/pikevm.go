// Package vm executes a compiled bytecode.Program with a Pike-style
// thread scheduler: every live thread advances one input byte per
// generation, a sparse.Set dedups threads already at a given program
// counter this generation (so pathological alternation/repeat nesting
// can't blow up to exponential thread counts), and among threads that
// reach MATCH, the first in priority order wins — priority is simply
// queue order, since every fork (SPLIT, ALT) inserts its higher-priority
// branch first.
package vm

import (
	"github.com/vmrex/vmrex/bytecode"
	"github.com/vmrex/vmrex/internal/sparse"
)

// thread is one candidate execution path through the program: a program
// counter, the capture slots accumulated so far, and (for possessive
// quantifiers) the position stack OpPushPos/OpCheckPos operate on.
//
// inBackref/backrefOp/backrefAt track progress through a capture-length
// backref match: unlike every other consuming opcode,
// OpBackref/OpBackrefInsensitive can consume more than one byte, so a
// thread may need several generations to get through it, one byte
// compared per generation.
type thread struct {
	pc        int
	startPos  int
	captures  cowCaptures
	posStack  cowStack
	inBackref bool
	backrefOp int // pc of the backref instruction currently in progress
	backrefAt int // bytes of that backref matched so far
}

// PikeVM executes a single compiled bytecode.Program.
type PikeVM struct {
	prog *bytecode.Program
	opts Options

	queue     []thread
	nextQueue []thread
	visited   *sparse.Set
}

// New creates a PikeVM bound to prog.
func New(prog *bytecode.Program, opts Options) *PikeVM {
	opts = opts.withDefaults()
	capacity := prog.Len()
	if capacity < 16 {
		capacity = 16
	}
	return &PikeVM{
		prog:      prog,
		opts:      opts,
		queue:     make([]thread, 0, capacity),
		nextQueue: make([]thread, 0, capacity),
		visited:   sparse.New(prog.Len() + 1),
	}
}

func (v *PikeVM) numSlots() int {
	return 2 * (v.prog.NumCaptures + 1)
}

// SearchAt runs an anchored search: a match, if any, must start exactly
// at pos. It implements leftmost-priority-wins: once some thread reaches
// MATCH, every lower-priority thread already queued behind it in this
// generation is irrelevant (it could only ever produce a worse match),
// but higher-priority threads still alive keep running since a later
// generation's MATCH from one of them would still outrank the one just
// recorded.
func (v *PikeVM) SearchAt(haystack []byte, pos int) (*Match, error) {
	v.queue = v.queue[:0]
	v.nextQueue = v.nextQueue[:0]
	v.visited.Clear()

	caps := newCowCaptures(v.numSlots())
	caps = caps.set(0, pos)
	if err := v.addThread(thread{pc: 0, startPos: pos, captures: caps}, haystack, pos, 0); err != nil {
		return nil, err
	}

	var best *Match
	steps := 0

	for p := pos; p <= len(haystack); p++ {
		for i, t := range v.queue {
			if v.prog.ReadOp(t.pc) == bytecode.OpMatch {
				endCaps := t.captures.set(1, p)
				best = newMatch(pos, p, endCaps.snapshot(), v.prog.NumCaptures)
				v.queue = v.queue[:i] // lower-priority threads this generation cannot beat it
				break
			}
		}

		if len(v.queue) == 0 || p >= len(haystack) {
			break
		}

		b := haystack[p]
		v.visited.Clear()
		for _, t := range v.queue {
			steps++
			if steps > v.opts.MaxSteps {
				return nil, &Error{Pos: p, Err: ErrStepLimit}
			}
			if err := v.step(t, b, haystack, p, p+1); err != nil {
				return nil, err
			}
		}
		v.queue, v.nextQueue = v.nextQueue, v.queue[:0]
	}

	return best, nil
}

// Search runs an unanchored search: a new start thread is seeded at
// every position until the first match is found (simulating an implicit
// (?s:.)*? prefix), giving leftmost-start semantics without restarting
// the whole search at each position.
func (v *PikeVM) Search(haystack []byte) (*Match, error) {
	v.queue = v.queue[:0]
	v.nextQueue = v.nextQueue[:0]
	v.visited.Clear()

	var best *Match
	steps := 0

	for p := 0; p <= len(haystack); p++ {
		if best == nil {
			v.visited.Clear()
			caps := newCowCaptures(v.numSlots())
			caps = caps.set(0, p)
			if err := v.addThread(thread{pc: 0, startPos: p, captures: caps}, haystack, p, 0); err != nil {
				return nil, err
			}
		}

		for i, t := range v.queue {
			if v.prog.ReadOp(t.pc) == bytecode.OpMatch {
				endCaps := t.captures.set(1, p)
				best = newMatch(t.startPos, p, endCaps.snapshot(), v.prog.NumCaptures)
				v.queue = v.queue[:i]
				break
			}
		}

		if p >= len(haystack) || len(v.queue) == 0 {
			break
		}

		b := haystack[p]
		v.visited.Clear()
		for _, t := range v.queue {
			steps++
			if steps > v.opts.MaxSteps {
				return nil, &Error{Pos: p, Err: ErrStepLimit}
			}
			if err := v.step(t, b, haystack, p, p+1); err != nil {
				return nil, err
			}
		}
		v.queue, v.nextQueue = v.nextQueue, v.queue[:0]
	}

	return best, nil
}

// FindAll returns every non-overlapping match in haystack, in order.
func (v *PikeVM) FindAll(haystack []byte) ([]*Match, error) {
	var matches []*Match
	pos := 0
	for pos <= len(haystack) {
		m, err := v.SearchAt(haystack, pos)
		if err != nil {
			return matches, err
		}
		if m == nil {
			// Unanchored retry: advance the search start and try again
			// rather than giving up at the first non-matching position.
			next, err := v.Search(haystack[pos:])
			if err != nil {
				return matches, err
			}
			if next == nil {
				break
			}
			next.Start += pos
			next.End += pos
			for i := range next.Groups {
				if next.Groups[i][0] >= 0 {
					next.Groups[i][0] += pos
					next.Groups[i][1] += pos
				}
			}
			m = next
		}

		matches = append(matches, m)
		if m.End > pos {
			pos = m.End
		} else {
			pos++
		}
	}
	return matches, nil
}

// addThread inserts t into the current generation's queue, following
// every zero-width instruction (SPLIT, GOTO, SAVE, anchors, lookaround)
// immediately via recursion until a consuming instruction or MATCH is
// reached. depth guards nested lookaround invocations, not this
// recursion itself (epsilon closures are bounded by program size via the
// visited set).
func (v *PikeVM) addThread(t thread, haystack []byte, pos int, depth int) error {
	if !v.visited.Insert(uint32(t.pc)) {
		return nil
	}

	switch v.prog.ReadOp(t.pc) {
	case bytecode.OpMatch:
		v.queue = append(v.queue, t)

	case bytecode.OpChar, bytecode.OpCharRange, bytecode.OpCharRangeInv,
		bytecode.OpCharClass, bytecode.OpCharClassInv,
		bytecode.OpCharClassRef, bytecode.OpCharClassInvRef,
		bytecode.OpAny, bytecode.OpAnyChar:
		v.queue = append(v.queue, t)

	case bytecode.OpBackref, bytecode.OpBackrefInsensitive:
		n := int(v.prog.ReadByte(t.pc))
		lo, hi := t.captures.get(2*n), t.captures.get(2*n+1)
		if lo < 0 || hi < 0 {
			return nil // referenced group never captured: backref fails
		}
		if hi == lo {
			// Empty capture: the backref matches zero-width, continue past it.
			return v.addThread(thread{pc: t.pc + 1 + bytecode.PayloadLen(v.prog.ReadOp(t.pc)),
				startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}
		t.inBackref = true
		t.backrefOp = t.pc
		t.backrefAt = 0
		v.queue = append(v.queue, t)

	case bytecode.OpGoto:
		target := v.prog.ReadOffset(t.pc)
		return v.addThread(thread{pc: target, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)

	case bytecode.OpSplit, bytecode.OpSplitGreedy, bytecode.OpSplitLazy, bytecode.OpSplitPossessive:
		t1, t2 := v.prog.ReadSplitOffsets(t.pc)
		if err := v.addThread(thread{pc: t1, startPos: t.startPos, captures: t.captures.clone(), posStack: t.posStack.clone()}, haystack, pos, depth); err != nil {
			return err
		}
		return v.addThread(thread{pc: t2, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)

	case bytecode.OpSaveStart:
		n := int(v.prog.ReadByte(t.pc))
		caps := t.captures.set(2*n, pos)
		return v.addThread(thread{pc: t.pc + 2, startPos: t.startPos, captures: caps, posStack: t.posStack}, haystack, pos, depth)

	case bytecode.OpSaveEnd:
		n := int(v.prog.ReadByte(t.pc))
		caps := t.captures.set(2*n+1, pos)
		return v.addThread(thread{pc: t.pc + 2, startPos: t.startPos, captures: caps, posStack: t.posStack}, haystack, pos, depth)

	case bytecode.OpPushPos:
		return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack.push(pos)}, haystack, pos, depth)

	case bytecode.OpCheckPos:
		top, rest, ok := t.posStack.pop()
		if ok && top == pos {
			return nil // atomic group matched zero-width on retry: kill the thread
		}
		return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: rest}, haystack, pos, depth)

	case bytecode.OpLineStart:
		if pos == 0 || (pos > 0 && haystack[pos-1] == '\n') {
			return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}
	case bytecode.OpLineEnd:
		if pos == len(haystack) || haystack[pos] == '\n' {
			return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}
	case bytecode.OpStringStart:
		if pos == 0 {
			return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}
	case bytecode.OpStringEnd:
		if pos == len(haystack) {
			return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}
	case bytecode.OpWordBoundary:
		if isWordBoundary(haystack, pos) {
			return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}
	case bytecode.OpNotWordBoundary:
		if !isWordBoundary(haystack, pos) {
			return v.addThread(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}

	case bytecode.OpLookahead, bytecode.OpNegativeLookahead:
		ok, err := v.runLookaround(t.pc, haystack, pos, depth, false)
		if err != nil {
			return err
		}
		negate := v.prog.ReadOp(t.pc) == bytecode.OpNegativeLookahead
		if ok != negate {
			skipGoto := t.pc + 1 + bytecode.PayloadLen(bytecode.OpLookahead)
			next := v.prog.ReadOffset(skipGoto)
			return v.addThread(thread{pc: next, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}

	case bytecode.OpLookbehind, bytecode.OpNegativeLookbehind:
		ok, err := v.runLookaround(t.pc, haystack, pos, depth, true)
		if err != nil {
			return err
		}
		negate := v.prog.ReadOp(t.pc) == bytecode.OpNegativeLookbehind
		if ok != negate {
			skipGoto := t.pc + 1 + bytecode.PayloadLen(bytecode.OpLookbehind)
			next := v.prog.ReadOffset(skipGoto)
			return v.addThread(thread{pc: next, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, pos, depth)
		}

	case bytecode.OpAssertEnd:
		v.queue = append(v.queue, t)
	}
	return nil
}

// step consumes byte b for a thread that addThread parked on a
// byte-consuming instruction, inserting its continuation into the next
// generation (via addThreadToNext, which runs the same epsilon closure
// as addThread but against the nextQueue/next-generation visited set).
func (v *PikeVM) step(t thread, b byte, haystack []byte, pos, nextPos int) error {
	switch v.prog.ReadOp(t.pc) {
	case bytecode.OpChar:
		if b == v.prog.ReadByte(t.pc) {
			v.addThreadToNext(thread{pc: t.pc + 2, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpCharRange:
		lo, hi := v.prog.ReadCharRange(t.pc)
		if b >= lo && b <= hi {
			v.addThreadToNext(thread{pc: t.pc + 3, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpCharRangeInv:
		lo, hi := v.prog.ReadCharRange(t.pc)
		if b < lo || b > hi {
			v.addThreadToNext(thread{pc: t.pc + 3, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpCharClass:
		table := v.prog.ReadCharClass(t.pc)
		if classContains(table, b) {
			v.addThreadToNext(thread{pc: t.pc + 33, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpCharClassInv:
		table := v.prog.ReadCharClass(t.pc)
		if !classContains(table, b) {
			v.addThreadToNext(thread{pc: t.pc + 33, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpCharClassRef:
		table := v.prog.ClassPool[v.prog.ReadClassRef(t.pc)]
		if classContains(table, b) {
			v.addThreadToNext(thread{pc: t.pc + 33, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpCharClassInvRef:
		table := v.prog.ClassPool[v.prog.ReadClassRef(t.pc)]
		if !classContains(table, b) {
			v.addThreadToNext(thread{pc: t.pc + 33, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpAny:
		if b != '\n' {
			v.addThreadToNext(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
		}
	case bytecode.OpAnyChar:
		v.addThreadToNext(thread{pc: t.pc + 1, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)

	case bytecode.OpBackref, bytecode.OpBackrefInsensitive:
		n := int(v.prog.ReadByte(t.backrefOp))
		lo, hi := t.captures.get(2*n), t.captures.get(2*n+1)
		want := haystack[lo+t.backrefAt]
		insensitive := v.prog.ReadOp(t.backrefOp) == bytecode.OpBackrefInsensitive
		if !byteEqual(b, want, insensitive) {
			return nil
		}
		progressed := t.backrefAt + 1
		if progressed == hi-lo {
			next := t.backrefOp + 2
			v.addThreadToNext(thread{pc: next, startPos: t.startPos, captures: t.captures, posStack: t.posStack}, haystack, nextPos)
			return nil
		}
		v.nextQueue = append(v.nextQueue, thread{
			pc: t.backrefOp, startPos: t.startPos, captures: t.captures, posStack: t.posStack,
			inBackref: true, backrefOp: t.backrefOp, backrefAt: progressed,
		})
	}
	return nil
}

// addThreadToNext inserts a continuation into the next generation,
// running the same epsilon closure addThread does (anchors and word
// boundaries still need the real haystack to check the surrounding
// bytes), but against nextQueue instead of queue.
func (v *PikeVM) addThreadToNext(t thread, haystack []byte, pos int) {
	saved := v.queue
	v.queue = v.nextQueue
	_ = v.addThread(t, haystack, pos, 0)
	v.nextQueue = v.queue
	v.queue = saved
}

// runLookaround executes the sub-program at the lookaround opcode's
// offset as a nested nothrow-forward-progress search, returning whether
// it found a zero-width assertion match. Lookbehind sub-programs are
// compiled over the same forward bytecode as lookahead, so they are
// matched here by scanning the reversed preceding haystack against a
// child compiled in reverse order — see reverseForLookbehind in the
// compiler package for how that mirroring is built.
func (v *PikeVM) runLookaround(pc int, haystack []byte, pos int, depth int, behind bool) (bool, error) {
	if depth+1 > v.opts.MaxRecursionDepth {
		return false, &Error{Pos: pos, Err: ErrRecursionLimit}
	}
	subPC := v.prog.ReadOffset(pc)

	sub := &PikeVM{prog: v.prog, opts: v.opts, visited: sparse.New(v.prog.Len() + 1)}
	sub.queue = make([]thread, 0, 8)
	sub.nextQueue = make([]thread, 0, 8)

	searchHaystack := haystack
	searchPos := pos
	if behind {
		searchHaystack = reverseBytes(haystack[:pos])
		searchPos = 0
	}

	caps := newCowCaptures(v.numSlots())
	if err := sub.addThread(thread{pc: subPC, startPos: searchPos, captures: caps}, searchHaystack, searchPos, depth+1); err != nil {
		return false, err
	}

	for p := searchPos; p <= len(searchHaystack); p++ {
		for _, t := range sub.queue {
			if sub.prog.ReadOp(t.pc) == bytecode.OpAssertEnd {
				return true, nil
			}
		}
		if len(sub.queue) == 0 || p >= len(searchHaystack) {
			break
		}
		b := searchHaystack[p]
		sub.visited.Clear()
		for _, t := range sub.queue {
			if err := sub.step(t, b, searchHaystack, p, p+1); err != nil {
				return false, err
			}
		}
		sub.queue, sub.nextQueue = sub.nextQueue, sub.queue[:0]
	}
	return false, nil
}

func classContains(table [32]byte, b byte) bool {
	return table[b/8]&(1<<(b%8)) != 0
}

func byteEqual(a, b byte, insensitive bool) bool {
	if a == b {
		return true
	}
	if !insensitive {
		return false
	}
	return asciiLower(a) == asciiLower(b)
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isWordBoundary(haystack []byte, pos int) bool {
	before := pos > 0 && isWordChar(haystack[pos-1])
	after := pos < len(haystack) && isWordChar(haystack[pos])
	return before != after
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
