// Package literal extracts literal prefixes and alternatives from an
// ast.Tree and turns them into a Prefilter: a fast pre-scan that narrows
// down candidate start positions before the VM runs at all.
package literal

import (
	"bytes"
	"sort"
)

// Literal is one concrete byte sequence a match could start with.
type Literal struct {
	Bytes []byte
}

// Seq is a set of alternative literal prefixes, e.g. the three branches
// of "cat|dog|bird".
type Seq struct {
	literals []Literal
}

// NewSeq creates a Seq from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{literals: lits}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at index i.
func (s *Seq) Get(i int) Literal { return s.literals[i] }

// IsEmpty reports whether the sequence has no literals.
func (s *Seq) IsEmpty() bool { return s == nil || len(s.literals) == 0 }

// Minimize drops any literal that has a shorter sibling literal as a
// prefix: the shorter one already matches every haystack position the
// longer one would, so the longer one contributes nothing to a prefilter.
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}
	sort.Slice(s.literals, func(i, j int) bool {
		return len(s.literals[i].Bytes) < len(s.literals[j].Bytes)
	})

	kept := make([]Literal, 0, len(s.literals))
	for _, cur := range s.literals {
		redundant := false
		for _, k := range kept {
			if bytes.HasPrefix(cur.Bytes, k.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, cur)
		}
	}
	s.literals = kept
}
