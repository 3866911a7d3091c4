package bytecode

import (
	"encoding/binary"
	"math"

	"github.com/vmrex/vmrex/internal/conv"
)

// Program is the flat little-endian instruction stream the compiler
// produces and the VM executes directly (no decode-to-struct pass): each
// instruction is an opcode byte followed by PayloadLen(op) payload bytes.
type Program struct {
	Code []byte

	// NumCaptures is the number of user-visible capturing groups (not
	// counting the implicit whole-match group 0). The VM allocates
	// 2*(NumCaptures+1) capture slots per thread.
	NumCaptures int

	// ClassPool holds the distinct 32-byte bit tables OpCharClassRef and
	// OpCharClassInvRef instructions index into. Populated by the
	// optimizer's class-folding pass; empty for an unoptimized program.
	ClassPool [][32]byte
}

// New creates an empty Program with room for size bytes of code.
func New(size int) *Program {
	return &Program{Code: make([]byte, 0, size)}
}

// PC returns the offset the next emitted instruction will land at.
func (p *Program) PC() int { return len(p.Code) }

// Len returns the total length of the instruction stream in bytes.
func (p *Program) Len() int { return len(p.Code) }

// EmitOp appends a payload-less opcode and returns its PC.
func (p *Program) EmitOp(op Op) int {
	pc := p.PC()
	p.Code = append(p.Code, byte(op))
	return pc
}

// EmitByte appends op followed by a single payload byte (SaveStart,
// SaveEnd, Backref, BackrefInsensitive) and returns op's PC.
func (p *Program) EmitByte(op Op, b byte) int {
	pc := p.PC()
	p.Code = append(p.Code, byte(op), b)
	return pc
}

// EmitCharRange appends op followed by [lo, hi] and returns op's PC.
func (p *Program) EmitCharRange(op Op, lo, hi byte) int {
	pc := p.PC()
	p.Code = append(p.Code, byte(op), lo, hi)
	return pc
}

// EmitCharClass appends op followed by the 32-byte inline bit table and
// returns op's PC.
func (p *Program) EmitCharClass(op Op, table [32]byte) int {
	pc := p.PC()
	p.Code = append(p.Code, byte(op))
	p.Code = append(p.Code, table[:]...)
	return pc
}

// ReserveOffset appends op followed by a 4-byte zero placeholder and
// returns the placeholder's position, to be filled in later by
// PatchOffset once the target PC is known. This is the "reserve space,
// emit child, patch offset" discipline the compiler uses for GOTO and the
// lookaround opcodes.
func (p *Program) ReserveOffset(op Op) (opPC, placeholderPC int) {
	opPC = p.PC()
	p.Code = append(p.Code, byte(op), 0, 0, 0, 0)
	return opPC, opPC + 1
}

// ReserveSplit appends a split-family opcode followed by two 4-byte zero
// placeholders and returns their positions.
func (p *Program) ReserveSplit(op Op) (opPC, placeholder1, placeholder2 int) {
	opPC = p.PC()
	p.Code = append(p.Code, byte(op), 0, 0, 0, 0, 0, 0, 0, 0)
	return opPC, opPC + 1, opPC + 5
}

// PatchOffset writes the relative jump from placeholderPC (the first byte
// of a 4-byte operand) to targetPC: the offset is interpreted by the VM
// relative to the byte immediately following the 4-byte operand.
//
// A program large enough to overflow the 32-bit relative-offset range
// indicates a pattern whose compiled form has grown far past anything
// reasonable (spec.md §4.3's "program size exceeds the platform
// instruction-offset range" case); conv.IntToUint32 turns that into an
// explicit panic rather than a silently wrapped, corrupt jump target.
func (p *Program) PatchOffset(placeholderPC, targetPC int) {
	rel := targetPC - (placeholderPC + 4)
	var mag int
	if rel < 0 {
		mag = -rel
	} else {
		mag = rel
	}
	if conv.IntToUint32(mag) > math.MaxInt32 {
		panic("bytecode: relative jump offset exceeds int32 range")
	}
	binary.LittleEndian.PutUint32(p.Code[placeholderPC:placeholderPC+4], uint32(int32(rel)))
}

// ReadOp returns the opcode at pc.
func (p *Program) ReadOp(pc int) Op {
	return Op(p.Code[pc])
}

// ReadByte returns the single payload byte following the opcode at pc.
func (p *Program) ReadByte(pc int) byte {
	return p.Code[pc+1]
}

// ReadCharRange returns the [lo, hi] payload following the opcode at pc.
func (p *Program) ReadCharRange(pc int) (lo, hi byte) {
	return p.Code[pc+1], p.Code[pc+2]
}

// ReadCharClass returns the 32-byte inline bit table following the
// opcode at pc.
func (p *Program) ReadCharClass(pc int) [32]byte {
	var table [32]byte
	copy(table[:], p.Code[pc+1:pc+33])
	return table
}

// ReadOffset resolves a single relative-offset operand (GOTO, the
// lookaround opcodes) at pc into an absolute target PC.
func (p *Program) ReadOffset(pc int) int {
	placeholderPC := pc + 1
	rel := int32(binary.LittleEndian.Uint32(p.Code[placeholderPC : placeholderPC+4]))
	return placeholderPC + 4 + int(rel)
}

// ReadSplitOffsets resolves the two relative-offset operands of a
// split-family opcode at pc into absolute target PCs.
func (p *Program) ReadSplitOffsets(pc int) (target1, target2 int) {
	p1 := pc + 1
	rel1 := int32(binary.LittleEndian.Uint32(p.Code[p1 : p1+4]))
	p2 := pc + 5
	rel2 := int32(binary.LittleEndian.Uint32(p.Code[p2 : p2+4]))
	return p1 + 4 + int(rel1), p2 + 4 + int(rel2)
}

// ReadClassRef resolves the 2-byte little-endian pool index following the
// opcode at pc (OpCharClassRef / OpCharClassInvRef).
func (p *Program) ReadClassRef(pc int) int {
	return int(binary.LittleEndian.Uint16(p.Code[pc+1 : pc+3]))
}

// InternClassTable returns the ClassPool index for table, reusing an
// existing entry when one is already byte-identical rather than
// appending a duplicate.
func (p *Program) InternClassTable(table [32]byte) int {
	for i, t := range p.ClassPool {
		if t == table {
			return i
		}
	}
	p.ClassPool = append(p.ClassPool, table)
	return len(p.ClassPool) - 1
}

// PatchCharClassRef overwrites the OpCharClass/OpCharClassInv instruction
// at pc in place with a same-length reference into ClassPool at idx: the
// instruction keeps its 33-byte footprint (so no PC downstream moves and
// no jump offset needs repatching), but its own 32-byte table collapses
// to a 2-byte index plus zero padding.
func (p *Program) PatchCharClassRef(pc int, op Op, idx int) {
	p.Code[pc] = byte(op)
	binary.LittleEndian.PutUint16(p.Code[pc+1:pc+3], uint16(idx))
	for i := pc + 3; i < pc+33; i++ {
		p.Code[i] = 0
	}
}

// Truncate cuts the instruction stream down to the first n bytes,
// discarding a dead trailing suffix the optimizer has proven nothing can
// jump into.
func (p *Program) Truncate(n int) {
	p.Code = p.Code[:n]
}

// InstrLen returns 1 + PayloadLen(op), the number of bytes the
// instruction at pc occupies — valid for every opcode, control-flow
// included, since split/goto/lookaround targets are resolved via their
// offset operands rather than fallthrough.
func (p *Program) InstrLen(pc int) int {
	return 1 + PayloadLen(p.ReadOp(pc))
}
