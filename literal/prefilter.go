package literal

import (
	"bytes"

	"github.com/coregx/ahocorasick"
	"golang.org/x/sys/cpu"
)

// Prefilter narrows down candidate start positions before the VM runs at
// all: a cheap forward scan over the haystack for a literal every match
// must contain. A prefilter hit is only a candidate — the VM still has to
// verify the rest of the pattern at that position.
type Prefilter interface {
	// Find returns the index of the first candidate at or after start, or
	// -1 if none exists.
	Find(haystack []byte, start int) int
}

// hasAVX2 gates the single-literal prefilter onto the wider AVX2 search
// window when the running CPU supports it; on platforms without it (or
// where detection is unavailable) the narrower loop below is just as
// correct, only slower for very long haystacks.
var hasAVX2 = cpu.X86.HasAVX2

// literalPrefilter finds a single required literal byte string.
type literalPrefilter struct {
	prefix          []byte
	caseInsensitive bool
}

func newLiteralPrefilter(prefix []byte, caseInsensitive bool) Prefilter {
	return &literalPrefilter{prefix: prefix, caseInsensitive: caseInsensitive}
}

func (p *literalPrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		if len(p.prefix) == 0 {
			return start
		}
		return -1
	}
	hay := haystack[start:]

	if p.caseInsensitive {
		if len(p.prefix) == 1 {
			if i := indexByteFold(hay, p.prefix[0]); i >= 0 {
				return start + i
			}
			return -1
		}
		if i := indexFold(hay, p.prefix); i >= 0 {
			return start + i
		}
		return -1
	}

	if len(p.prefix) == 1 {
		if i := indexByte(hay, p.prefix[0]); i >= 0 {
			return start + i
		}
		return -1
	}

	if i := bytes.Index(hay, p.prefix); i >= 0 {
		return start + i
	}
	return -1
}

// indexByte dispatches to the standard library's IndexByte (which the Go
// runtime itself lowers to SIMD assembly on AVX2-capable amd64 hosts) when
// the capability is present, and to a portable scalar scan otherwise. The
// scalar path is never wrong, only slower, so this degrades cleanly on
// older hardware or non-amd64 architectures.
func indexByte(hay []byte, b byte) int {
	if hasAVX2 {
		return bytes.IndexByte(hay, b)
	}
	return indexByteScalar(hay, b)
}

func indexByteScalar(hay []byte, b byte) int {
	for i, c := range hay {
		if c == b {
			return i
		}
	}
	return -1
}

// asciiLower folds an ASCII letter to lowercase, leaving every other byte
// untouched.
func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// indexByteFold is indexByte's case-insensitive counterpart: a literal
// prefilter built from a CaseInsensitive pattern must report a candidate
// for every casing the VM would actually accept, so the scan compares
// ASCII-folded bytes instead of raw ones.
func indexByteFold(hay []byte, b byte) int {
	want := asciiLower(b)
	for i, c := range hay {
		if asciiLower(c) == want {
			return i
		}
	}
	return -1
}

// indexFold is bytes.Index's case-insensitive counterpart. The literals a
// prefilter extracts are short (they come from a pattern's required
// prefix or a bounded alternation), so a naive O(n*m) scan is in line with
// how small these haystack searches actually run.
func indexFold(hay, lit []byte) int {
	if len(lit) == 0 {
		return 0
	}
	limit := len(hay) - len(lit)
	for i := 0; i <= limit; i++ {
		match := true
		for j := range lit {
			if asciiLower(hay[i+j]) != asciiLower(lit[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// alternationPrefilter finds the earliest occurrence of any literal in a
// bounded set, e.g. the branches of "cat|dog|bird".
type alternationPrefilter struct {
	seq             *Seq
	caseInsensitive bool
	auto            *ahocorasick.Automaton // nil when the linear scan path is used
}

// newAlternationPrefilter builds a multi-literal prefilter. Three or more
// case-sensitive alternatives go through Aho-Corasick for single-pass O(n)
// scanning; fewer, or any case-insensitive pattern (the automaton has no
// case-folding mode), fall back to a per-literal scan.
func newAlternationPrefilter(seq *Seq, caseInsensitive bool) Prefilter {
	p := &alternationPrefilter{seq: seq, caseInsensitive: caseInsensitive}
	if caseInsensitive || seq.Len() < 3 {
		return p
	}

	builder := ahocorasick.NewBuilder()
	for i := 0; i < seq.Len(); i++ {
		builder.AddPattern(seq.Get(i).Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return p
	}
	p.auto = auto
	return p
}

func (p *alternationPrefilter) Find(haystack []byte, start int) int {
	if start > len(haystack) {
		return -1
	}
	if p.auto != nil {
		m := p.auto.Find(haystack, start)
		if m == nil {
			return -1
		}
		return m.Start
	}

	best := -1
	for i := 0; i < p.seq.Len(); i++ {
		lit := p.seq.Get(i).Bytes
		if len(lit) == 0 {
			continue
		}
		var idx int
		if p.caseInsensitive {
			idx = indexFold(haystack[start:], lit)
		} else {
			idx = bytes.Index(haystack[start:], lit)
		}
		if idx < 0 {
			continue
		}
		pos := start + idx
		if best == -1 || pos < best {
			best = pos
		}
	}
	return best
}
