package literal

import "testing"

func TestSeqLenAndGet(t *testing.T) {
	s := NewSeq(Literal{Bytes: []byte("a")}, Literal{Bytes: []byte("bb")})
	if s.Len() != 2 {
		t.Fatalf("got %d, want 2", s.Len())
	}
	if string(s.Get(1).Bytes) != "bb" {
		t.Fatalf("got %q, want bb", s.Get(1).Bytes)
	}
}

func TestSeqIsEmpty(t *testing.T) {
	var s *Seq
	if !s.IsEmpty() {
		t.Fatal("nil seq should be empty")
	}
	s = NewSeq()
	if !s.IsEmpty() {
		t.Fatal("seq with no literals should be empty")
	}
	s = NewSeq(Literal{Bytes: []byte("x")})
	if s.IsEmpty() {
		t.Fatal("seq with a literal should not be empty")
	}
}

func TestSeqMinimizeDropsPrefixedDuplicates(t *testing.T) {
	s := NewSeq(
		Literal{Bytes: []byte("cathouse")},
		Literal{Bytes: []byte("cat")},
		Literal{Bytes: []byte("dog")},
	)
	s.Minimize()
	if s.Len() != 2 {
		t.Fatalf("got %d literals after minimize, want 2: %+v", s.Len(), s.literals)
	}
	seen := map[string]bool{}
	for i := 0; i < s.Len(); i++ {
		seen[string(s.Get(i).Bytes)] = true
	}
	if !seen["cat"] || !seen["dog"] {
		t.Fatalf("unexpected survivors: %+v", s.literals)
	}
	if seen["cathouse"] {
		t.Fatal("cathouse should have been dropped as redundant with cat")
	}
}

func TestSeqMinimizeKeepsDistinctLiterals(t *testing.T) {
	s := NewSeq(
		Literal{Bytes: []byte("cat")},
		Literal{Bytes: []byte("dog")},
		Literal{Bytes: []byte("bird")},
	)
	s.Minimize()
	if s.Len() != 3 {
		t.Fatalf("got %d, want 3", s.Len())
	}
}
