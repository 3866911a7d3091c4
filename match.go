package vmrex

// Match represents a successful match of a Regexp against a haystack,
// with the full capture group span list.
//
// Example:
//
//	re := vmrex.MustCompile(`(\w+)@(\w+)`)
//	m := re.FindMatch([]byte("user@host"))
//	println(m.String())   // "user@host"
//	println(m.Group(1))   // "user"
type Match struct {
	start    int
	end      int
	haystack []byte
	groups   [][2]int // groups[i] is group i+1's [start,end), or [-1,-1]
}

func newMatchFromVM(start, end int, haystack []byte, groups [][2]int) *Match {
	return &Match{start: start, end: end, haystack: haystack, groups: groups}
}

// Start returns the inclusive start position of the whole match.
func (m *Match) Start() int { return m.start }

// End returns the exclusive end position of the whole match.
func (m *Match) End() int { return m.end }

// Len returns the length of the whole match in bytes.
func (m *Match) Len() int { return m.end - m.start }

// Bytes returns the matched text as a slice into the original haystack.
func (m *Match) Bytes() []byte {
	if m.start < 0 || m.end > len(m.haystack) || m.start > m.end {
		return nil
	}
	return m.haystack[m.start:m.end]
}

// String returns the matched text, copied into a new string.
func (m *Match) String() string {
	return string(m.Bytes())
}

// IsEmpty reports whether the match has zero length.
func (m *Match) IsEmpty() bool {
	return m.start == m.end
}

// NumGroups returns the number of capturing groups (not counting the
// whole match).
func (m *Match) NumGroups() int {
	return len(m.groups)
}

// GroupIndex returns the [start, end) span of capture group i (1-based).
// Returns [-1, -1] if the group is out of range or didn't participate.
func (m *Match) GroupIndex(i int) [2]int {
	if i < 1 || i > len(m.groups) {
		return [2]int{-1, -1}
	}
	return m.groups[i-1]
}

// Group returns the text captured by group i (1-based), or "" if the
// group is out of range or didn't participate in the match.
func (m *Match) Group(i int) string {
	span := m.GroupIndex(i)
	if span[0] < 0 {
		return ""
	}
	return string(m.haystack[span[0]:span[1]])
}
