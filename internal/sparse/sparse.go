// Package sparse provides a sparse set of small integers with O(1) insert,
// membership test, and clear.
//
// The VM uses one of these per dispatch generation to guarantee that a
// given bytecode program counter is never processed twice within the same
// generation (the thread-dedup invariant): the universe size is the
// program length, so every reachable pc has a slot.
package sparse

// Set is a set of uint32 values bounded by a fixed capacity, backed by the
// classic Briggs/Torczon sparse-set trick: a sparse array maps values to
// slots in a dense array, so Clear is O(1) (no need to zero anything) and
// Contains never has to trust a stale sparse entry without checking the
// dense slot it claims to point at.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// New creates a Set whose capacity is the exclusive upper bound on values
// it will ever hold (e.g. len(program) for a PC-dedup set).
func New(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value to the set, returning false if it was already present.
func (s *Set) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	idx := uint32(len(s.dense))
	s.dense = append(s.dense, value)
	s.sparse[value] = idx
	return true
}

// Contains reports whether value is a member of the set.
func (s *Set) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear empties the set in O(1).
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements currently in the set.
func (s *Set) Len() int {
	return len(s.dense)
}
