// Package pool provides a small sync.Pool wrapper for per-search mutable
// state, so a compiled program can be executed concurrently without
// allocating fresh scratch state on every call.
package pool

import "sync"

// Pool manages reusable instances of T. New creates a fresh instance when
// the pool is empty; Reset is called before an instance is handed back out
// so callers never observe state left over from a previous use.
//
// This mirrors the coregex meta.searchStatePool pattern: Get/Put around a
// sync.Pool, with an explicit reset step on release rather than on
// acquisition, so Put can be deferred immediately after Get.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T)
}

// New creates a Pool that constructs new elements with newFn and clears
// them with reset before they go back into circulation.
func New[T any](newFn func() *T, reset func(*T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool = sync.Pool{
		New: func() any {
			return newFn()
		},
	}
	return p
}

// Get retrieves an instance from the pool, creating one if necessary.
func (p *Pool[T]) Get() *T {
	return p.pool.Get().(*T)
}

// Put resets and returns an instance to the pool for reuse.
func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	if p.reset != nil {
		p.reset(v)
	}
	p.pool.Put(v)
}
