// Package vmrex is a from-scratch regular expression engine built around
// a flat bytecode instruction stream and a Pike-style thread-scheduled
// VM: no backtracking. Threads are deduplicated by program counter at
// each input position, and a step budget (MaxSteps) bounds the work of
// each search attempt.
//
// Supported syntax is a Perl-like subset: literals, '.', character
// classes (including the \d \w \s shorthands and their complements),
// anchors (^ $ \b \B), alternation, greedy/lazy/possessive quantifiers,
// capturing and non-capturing groups, lookahead/lookbehind (positive and
// negative), and numbered backreferences \1-\9.
//
// Basic usage:
//
//	re, err := vmrex.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if re.Test([]byte("42")) {
//	    fmt.Println("matched!")
//	}
//	m := re.Find([]byte("room 42"))
//	fmt.Println(string(m)) // "42"
//
// Custom compilation options:
//
//	opts := vmrex.DefaultOptions()
//	opts.CaseInsensitive = true
//	re, err := vmrex.CompileWithOptions(`hello`, opts)
package vmrex

import (
	"github.com/vmrex/vmrex/bytecode"
	"github.com/vmrex/vmrex/compiler"
	"github.com/vmrex/vmrex/internal/pool"
	"github.com/vmrex/vmrex/literal"
	"github.com/vmrex/vmrex/parser"
	"github.com/vmrex/vmrex/vm"
)

// Regexp represents a compiled regular expression.
//
// A *Regexp is safe to use concurrently from multiple goroutines: each
// search borrows a scratch *vm.PikeVM from an internal pool for the
// duration of the call rather than mutating shared state.
//
// Example:
//
//	re := vmrex.MustCompile(`hello`)
//	if re.Test([]byte("hello")) {
//	    println("matched!")
//	}
type Regexp struct {
	pattern   string
	prog      *bytecode.Program
	prefilter literal.Prefilter
	vmPool    *pool.Pool[vm.PikeVM]
}

// Compile compiles pattern with DefaultOptions.
//
// Example:
//
//	re, err := vmrex.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regexp, error) {
	return CompileWithOptions(pattern, DefaultOptions())
}

// MustCompile compiles pattern and panics if it fails. Useful for
// patterns known to be valid at package init time.
//
// Example:
//
//	var emailPattern = vmrex.MustCompile(`[a-z]+@[a-z]+\.[a-z]+`)
func MustCompile(pattern string) *Regexp {
	re, err := Compile(pattern)
	if err != nil {
		panic("vmrex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileWithOptions compiles pattern with explicit options, returning a
// *ConfigError (wrapped in a *CompileError) if opts is out of range
// before attempting to parse the pattern at all.
//
// Example:
//
//	opts := vmrex.DefaultOptions()
//	opts.OptLevel = compiler.LevelBasic // skip prefilter extraction
//	re, err := vmrex.CompileWithOptions(`(a|b|c)*`, opts)
func CompileWithOptions(pattern string, opts CompileOptions) (*Regexp, error) {
	if err := opts.Validate(); err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}

	tree, err := parser.Parse(pattern)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}

	result, err := compiler.Compile(tree, opts.compilerOptions())
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}

	vmOpts := opts.vmOptions()
	re := &Regexp{
		pattern:   pattern,
		prog:      result.Program,
		prefilter: result.Prefilter,
	}
	re.vmPool = pool.New(
		func() *vm.PikeVM { return vm.New(re.prog, vmOpts) },
		func(*vm.PikeVM) {}, // PikeVM resets its own queues at the top of Search/SearchAt
	)
	return re, nil
}

func (r *Regexp) acquire() *vm.PikeVM {
	return r.vmPool.Get()
}

func (r *Regexp) release(v *vm.PikeVM) {
	r.vmPool.Put(v)
}

// searchFrom runs one search, consulting the prefilter (if any) to skip
// ahead to a candidate start position before invoking the VM. It never
// re-slices haystack, so anchors stay correct against the original input
// regardless of where pos lands (spec.md's "findAll" fix: see
// SPEC_FULL.md Open Question 2).
func (r *Regexp) searchFrom(haystack []byte, pos int) (*vm.Match, error) {
	v := r.acquire()
	defer r.release(v)

	if r.prefilter == nil {
		for p := pos; p <= len(haystack); p++ {
			m, err := v.SearchAt(haystack, p)
			if err != nil || m != nil {
				return m, err
			}
		}
		return nil, nil
	}

	for p := pos; p <= len(haystack); {
		candidate := r.prefilter.Find(haystack, p)
		if candidate < 0 {
			return nil, nil
		}
		m, err := v.SearchAt(haystack, candidate)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
		p = candidate + 1
	}
	return nil, nil
}

func toMatch(haystack []byte, m *vm.Match) *Match {
	if m == nil {
		return nil
	}
	return newMatchFromVM(m.Start, m.End, haystack, m.Groups)
}

// Test reports whether the pattern matches haystack in its entirety:
// some execution path must consume every byte from start to end. This is
// anchored on both sides regardless of whether the pattern itself uses
// ^/$ — callers wanting a partial, leftmost match anywhere in haystack
// use Find instead. Execution errors (step-limit/recursion-limit) are
// treated as no-match.
//
// Example:
//
//	re := vmrex.MustCompile(`\d+`)
//	re.Test([]byte("123"))     // true
//	re.Test([]byte("a123b"))   // false: doesn't consume the whole input
//	re.Find([]byte("a123b"))   // "123": Find only wants a match somewhere
func (r *Regexp) Test(haystack []byte) bool {
	v := r.acquire()
	defer r.release(v)
	m, err := v.SearchAt(haystack, 0)
	return err == nil && m != nil && m.End == len(haystack)
}

// TestString reports whether the pattern matches s in its entirety. See
// Test.
func (r *Regexp) TestString(s string) bool {
	return r.Test([]byte(s))
}

// FindMatch returns the leftmost match in haystack with full capture
// group information, or nil if there is no match or the search hit a
// resource limit.
//
// Example:
//
//	re := vmrex.MustCompile(`(\w+)@(\w+)`)
//	m := re.FindMatch([]byte("contact user@host now"))
//	println(m.Group(1)) // "user"
func (r *Regexp) FindMatch(haystack []byte) *Match {
	m, err := r.searchFrom(haystack, 0)
	if err != nil {
		return nil
	}
	return toMatch(haystack, m)
}

// Find returns a slice holding the text of the leftmost match in
// haystack, or nil if there is no match.
//
// Example:
//
//	re := vmrex.MustCompile(`\d+`)
//	println(string(re.Find([]byte("age: 42")))) // "42"
func (r *Regexp) Find(haystack []byte) []byte {
	m := r.FindMatch(haystack)
	if m == nil {
		return nil
	}
	return m.Bytes()
}

// FindString returns the text of the leftmost match in s, or "" if none.
func (r *Regexp) FindString(s string) string {
	b := r.Find([]byte(s))
	if b == nil {
		return ""
	}
	return string(b)
}

// FindIndex returns the [start, end) span of the leftmost match in
// haystack, or nil if there is no match.
func (r *Regexp) FindIndex(haystack []byte) []int {
	m := r.FindMatch(haystack)
	if m == nil {
		return nil
	}
	return []int{m.Start(), m.End()}
}

// FindStringIndex returns the [start, end) span of the leftmost match
// in s, or nil if there is no match.
func (r *Regexp) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindAllMatch returns every non-overlapping match in haystack, in
// order, each with full capture information. If n >= 0, at most n
// matches are returned; n < 0 means unlimited.
func (r *Regexp) FindAllMatch(haystack []byte, n int) []*Match {
	if n == 0 {
		return nil
	}

	var matches []*Match
	pos := 0
	for pos <= len(haystack) {
		m, err := r.searchFrom(haystack, pos)
		if err != nil || m == nil {
			break
		}
		matches = append(matches, toMatch(haystack, m))
		if m.End > pos {
			pos = m.End
		} else {
			pos++
		}
		if n > 0 && len(matches) >= n {
			break
		}
	}
	return matches
}

// FindAll returns a slice of all successive matches of the pattern in
// haystack. If n >= 0, at most n matches are returned; n < 0 is
// unlimited.
//
// Example:
//
//	re := vmrex.MustCompile(`\d+`)
//	matches := re.FindAll([]byte("1 2 3"), -1)
//	// matches = [[]byte("1"), []byte("2"), []byte("3")]
func (r *Regexp) FindAll(haystack []byte, n int) [][]byte {
	ms := r.FindAllMatch(haystack, n)
	if ms == nil {
		return nil
	}
	out := make([][]byte, len(ms))
	for i, m := range ms {
		out[i] = m.Bytes()
	}
	return out
}

// FindAllString returns all successive matches of the pattern in s.
func (r *Regexp) FindAllString(s string, n int) []string {
	ms := r.FindAllMatch([]byte(s), n)
	if ms == nil {
		return nil
	}
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

// FindAllIndex returns the [start, end) spans of all successive matches
// of the pattern in haystack.
func (r *Regexp) FindAllIndex(haystack []byte, n int) [][]int {
	ms := r.FindAllMatch(haystack, n)
	if ms == nil {
		return nil
	}
	out := make([][]int, len(ms))
	for i, m := range ms {
		out[i] = []int{m.Start(), m.End()}
	}
	return out
}

// FindSubmatch returns the leftmost match and the text of each capture
// group. Result[0] is the whole match, result[i] is capture group i.
// Unmatched groups are nil. Returns nil if there is no match.
//
// Example:
//
//	re := vmrex.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	groups := re.FindSubmatch([]byte("user@example.com"))
//	// groups[0] = "user@example.com", groups[1] = "user", ...
func (r *Regexp) FindSubmatch(haystack []byte) [][]byte {
	m := r.FindMatch(haystack)
	if m == nil {
		return nil
	}
	out := make([][]byte, m.NumGroups()+1)
	out[0] = m.Bytes()
	for i := 1; i <= m.NumGroups(); i++ {
		span := m.GroupIndex(i)
		if span[0] >= 0 {
			out[i] = haystack[span[0]:span[1]]
		}
	}
	return out
}

// FindStringSubmatch is FindSubmatch for strings.
func (r *Regexp) FindStringSubmatch(s string) []string {
	groups := r.FindSubmatch([]byte(s))
	if groups == nil {
		return nil
	}
	out := make([]string, len(groups))
	for i, g := range groups {
		if g != nil {
			out[i] = string(g)
		}
	}
	return out
}

// FindSubmatchIndex returns the [start, end) spans for the whole match
// and every capture group, flattened as result[2*i:2*i+2]. Unmatched
// groups have [-1,-1]. Returns nil if there is no match.
func (r *Regexp) FindSubmatchIndex(haystack []byte) []int {
	m := r.FindMatch(haystack)
	if m == nil {
		return nil
	}
	out := make([]int, 2*(m.NumGroups()+1))
	out[0], out[1] = m.Start(), m.End()
	for i := 1; i <= m.NumGroups(); i++ {
		span := m.GroupIndex(i)
		out[2*i], out[2*i+1] = span[0], span[1]
	}
	return out
}

// FindStringSubmatchIndex is FindSubmatchIndex for strings.
func (r *Regexp) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// String returns the source pattern text the Regexp was compiled from.
func (r *Regexp) String() string {
	return r.pattern
}

// NumSubexp returns the number of capturing groups in the pattern (not
// counting the whole match).
//
// Example:
//
//	re := vmrex.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	println(re.NumSubexp()) // 3
func (r *Regexp) NumSubexp() int {
	return r.prog.NumCaptures
}
