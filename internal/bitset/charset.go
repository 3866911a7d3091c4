// Package bitset provides a fixed-size 256-bit character set, the inline
// bit table backing the CHAR_CLASS/CHAR_CLASS_INV bytecode opcodes.
package bitset

// CharSet is a dense bitmap over all 256 byte values. It is the in-memory
// form of the 32-byte inline table that follows a CHAR_CLASS instruction
// in the bytecode stream (see package bytecode).
type CharSet [32]byte

// Set marks b as a member of the set.
func (c *CharSet) Set(b byte) {
	c[b>>3] |= 1 << (b & 7)
}

// SetRange marks every byte in [lo, hi] (inclusive) as a member.
func (c *CharSet) SetRange(lo, hi byte) {
	for {
		c.Set(lo)
		if lo == hi {
			return
		}
		lo++
	}
}

// Contains reports whether b is a member of the set.
func (c *CharSet) Contains(b byte) bool {
	return c[b>>3]&(1<<(b&7)) != 0
}

// Invert flips every bit in place, turning the set into its complement
// over the full byte range.
func (c *CharSet) Invert() {
	for i := range c {
		c[i] = ^c[i]
	}
}

// Union sets c to the bitwise union of c and other.
func (c *CharSet) Union(other *CharSet) {
	for i := range c {
		c[i] |= other[i]
	}
}

// Bytes returns the raw 32-byte table, suitable for appending directly
// after a CHAR_CLASS opcode.
func (c *CharSet) Bytes() []byte {
	return c[:]
}

// FromBytes loads a CharSet from a 32-byte inline table, as decoded from
// a bytecode program.
func FromBytes(b []byte) CharSet {
	var c CharSet
	copy(c[:], b)
	return c
}

// Digit returns the bit table for the ASCII digit shorthand class \d: [0-9].
func Digit() CharSet {
	var c CharSet
	c.SetRange('0', '9')
	return c
}

// Word returns the bit table for the ASCII word shorthand class \w:
// [A-Za-z0-9_].
func Word() CharSet {
	var c CharSet
	c.SetRange('a', 'z')
	c.SetRange('A', 'Z')
	c.SetRange('0', '9')
	c.Set('_')
	return c
}

// Space returns the bit table for the ASCII whitespace shorthand class
// \s: [ \t\n\r\f\v].
func Space() CharSet {
	var c CharSet
	c.Set(' ')
	c.Set('\t')
	c.Set('\n')
	c.Set('\r')
	c.Set('\f')
	c.Set('\v')
	return c
}

// AnyExceptNewline returns the bit table used for the dot wildcard when
// dot-all mode is disabled: every byte except '\n'.
func AnyExceptNewline() CharSet {
	c := Any()
	c[('\n')>>3] &^= 1 << ('\n' & 7)
	return c
}

// Any returns the bit table that matches every byte (dot-all mode).
func Any() CharSet {
	var c CharSet
	for i := range c {
		c[i] = 0xFF
	}
	return c
}
