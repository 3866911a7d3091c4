package pool

import "testing"

type scratch struct {
	buf   []int
	resets int
}

func TestPoolGetPutReuses(t *testing.T) {
	created := 0
	p := New(func() *scratch {
		created++
		return &scratch{buf: make([]int, 0, 4)}
	}, func(s *scratch) {
		s.buf = s.buf[:0]
		s.resets++
	})

	a := p.Get()
	a.buf = append(a.buf, 1, 2, 3)
	p.Put(a)

	b := p.Get()
	if len(b.buf) != 0 {
		t.Errorf("expected reset buffer, got len %d", len(b.buf))
	}
	if b.resets != 1 {
		t.Errorf("expected reset to have run once, got %d", b.resets)
	}
	if created != 1 {
		t.Errorf("expected reuse (1 allocation), got %d allocations", created)
	}
}

func TestPoolPutNilIsNoop(t *testing.T) {
	p := New(func() *scratch { return &scratch{} }, func(s *scratch) {})
	p.Put(nil) // must not panic
}
