package bytecode

import "testing"

func TestEmitCharRoundTrip(t *testing.T) {
	p := New(8)
	pc := p.EmitByte(OpChar, 'x')
	if p.ReadOp(pc) != OpChar {
		t.Fatalf("got op %v, want OpChar", p.ReadOp(pc))
	}
	if p.ReadByte(pc) != 'x' {
		t.Fatalf("got %q, want 'x'", p.ReadByte(pc))
	}
	if p.InstrLen(pc) != 2 {
		t.Fatalf("InstrLen = %d, want 2", p.InstrLen(pc))
	}
}

func TestEmitCharRangeRoundTrip(t *testing.T) {
	p := New(8)
	pc := p.EmitCharRange(OpCharRange, 'a', 'z')
	lo, hi := p.ReadCharRange(pc)
	if lo != 'a' || hi != 'z' {
		t.Fatalf("got (%q, %q), want ('a', 'z')", lo, hi)
	}
	if p.InstrLen(pc) != 3 {
		t.Fatalf("InstrLen = %d, want 3", p.InstrLen(pc))
	}
}

func TestEmitCharClassRoundTrip(t *testing.T) {
	p := New(64)
	var table [32]byte
	table[0] = 0xFF
	table[31] = 0x01
	pc := p.EmitCharClass(OpCharClass, table)

	got := p.ReadCharClass(pc)
	if got != table {
		t.Fatalf("got %v, want %v", got, table)
	}
	if p.InstrLen(pc) != 33 {
		t.Fatalf("InstrLen = %d, want 33", p.InstrLen(pc))
	}
}

func TestGotoOffsetPatching(t *testing.T) {
	p := New(16)
	gotoPC, placeholder := p.ReserveOffset(OpGoto)
	p.EmitOp(OpMatch) // filler instruction between goto and its target
	target := p.PC()
	p.EmitOp(OpMatch)
	p.PatchOffset(placeholder, target)

	if got := p.ReadOffset(gotoPC); got != target {
		t.Fatalf("ReadOffset = %d, want %d", got, target)
	}
}

func TestSplitOffsetPatching(t *testing.T) {
	p := New(32)
	splitPC, ph1, ph2 := p.ReserveSplit(OpSplitGreedy)
	loopTarget := p.PC()
	p.EmitOp(OpMatch)
	continueTarget := p.PC()
	p.EmitOp(OpMatch)

	p.PatchOffset(ph1, loopTarget)
	p.PatchOffset(ph2, continueTarget)

	t1, t2 := p.ReadSplitOffsets(splitPC)
	if t1 != loopTarget || t2 != continueTarget {
		t.Fatalf("got (%d, %d), want (%d, %d)", t1, t2, loopTarget, continueTarget)
	}
}

func TestBackwardJump(t *testing.T) {
	// Loop body followed by a GOTO back to its own start, as a compiler
	// would emit for a repeat's backward edge.
	p := New(16)
	loopStart := p.PC()
	p.EmitOp(OpAny)
	_, placeholder := p.ReserveOffset(OpGoto)
	p.PatchOffset(placeholder, loopStart)

	gotoPC := placeholder - 1
	if got := p.ReadOffset(gotoPC); got != loopStart {
		t.Fatalf("ReadOffset = %d, want %d (backward jump)", got, loopStart)
	}
}

func TestPayloadLenTable(t *testing.T) {
	cases := []struct {
		op   Op
		want int
	}{
		{OpChar, 1},
		{OpCharRange, 2},
		{OpCharRangeInv, 2},
		{OpCharClass, 32},
		{OpCharClassInv, 32},
		{OpAny, 0},
		{OpMatch, 0},
		{OpGoto, 4},
		{OpSplit, 8},
		{OpSplitGreedy, 8},
		{OpSplitLazy, 8},
		{OpSplitPossessive, 8},
		{OpSaveStart, 1},
		{OpSaveEnd, 1},
		{OpLookahead, 4},
		{OpNegativeLookahead, 4},
		{OpLookbehind, 4},
		{OpNegativeLookbehind, 4},
		{OpBackref, 1},
		{OpBackrefInsensitive, 1},
		{OpPushPos, 0},
		{OpCheckPos, 0},
	}
	for _, c := range cases {
		if got := PayloadLen(c.op); got != c.want {
			t.Errorf("PayloadLen(%v) = %d, want %d", c.op, got, c.want)
		}
	}
}

func TestOpString(t *testing.T) {
	if OpChar.String() != "Char" {
		t.Errorf("got %q, want %q", OpChar.String(), "Char")
	}
	if got := Op(250).String(); got != "Op(250)" {
		t.Errorf("got %q, want %q", got, "Op(250)")
	}
}
