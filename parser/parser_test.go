package parser

import (
	"errors"
	"testing"

	"github.com/vmrex/vmrex/ast"
)

func mustParse(t *testing.T, pattern string) *ast.Tree {
	t.Helper()
	tree, err := Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", pattern, err)
	}
	return tree
}

func TestParseLiteralSequence(t *testing.T) {
	tree := mustParse(t, "cat")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindConcat || len(root.Children) != 3 {
		t.Fatalf("got %+v, want Concat of 3 chars", root)
	}
	for i, want := range []byte{'c', 'a', 't'} {
		n := tree.Get(root.Children[i])
		if n.Kind != ast.KindChar || n.Char != want {
			t.Errorf("child %d: got %+v, want char %q", i, n, want)
		}
	}
}

func TestParseAlternation(t *testing.T) {
	tree := mustParse(t, "cat|dog|bird")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindAlt || len(root.Children) != 3 {
		t.Fatalf("got %+v, want Alt of 3 branches", root)
	}
}

func TestParseCaptureGroups(t *testing.T) {
	tree := mustParse(t, "(a)(b)(c)")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindConcat || len(root.Children) != 3 {
		t.Fatalf("got %+v, want Concat of 3 groups", root)
	}
	for i, id := range root.Children {
		g := tree.Get(id)
		if g.Kind != ast.KindCapture || g.Index != i+1 {
			t.Errorf("group %d: got %+v, want Capture Index=%d", i, g, i+1)
		}
	}
	if tree.CaptureCount != 3 {
		t.Errorf("CaptureCount = %d, want 3", tree.CaptureCount)
	}
}

func TestParseNestedCapturesNumberLeftToRight(t *testing.T) {
	tree := mustParse(t, "((a)(b))")
	outer := tree.Get(tree.Root)
	if outer.Kind != ast.KindCapture || outer.Index != 1 {
		t.Fatalf("got %+v, want outer Capture Index=1", outer)
	}
	inner := tree.Get(outer.Child)
	if inner.Kind != ast.KindConcat || len(inner.Children) != 2 {
		t.Fatalf("got %+v, want Concat of 2 inner groups", inner)
	}
	a := tree.Get(inner.Children[0])
	b := tree.Get(inner.Children[1])
	if a.Index != 2 || b.Index != 3 {
		t.Fatalf("got indices %d, %d, want 2, 3", a.Index, b.Index)
	}
}

func TestParseNonCapturingGroup(t *testing.T) {
	tree := mustParse(t, "(?:ab)")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindGroup {
		t.Fatalf("got %+v, want Group", root)
	}
	if tree.CaptureCount != 0 {
		t.Errorf("CaptureCount = %d, want 0", tree.CaptureCount)
	}
}

func TestParseLookaround(t *testing.T) {
	cases := []struct {
		pattern string
		kind    ast.Kind
	}{
		{"(?=a)", ast.KindLookahead},
		{"(?!a)", ast.KindNegLookahead},
		{"(?<=a)", ast.KindLookbehind},
		{"(?<!a)", ast.KindNegLookbehind},
	}
	for _, c := range cases {
		tree := mustParse(t, c.pattern)
		root := tree.Get(tree.Root)
		if root.Kind != c.kind {
			t.Errorf("%q: got %v, want %v", c.pattern, root.Kind, c.kind)
		}
	}
}

func TestParseNamedGroupBecomesPlainCapture(t *testing.T) {
	tree := mustParse(t, "(?P<year>a)")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindCapture || root.Index != 1 {
		t.Fatalf("got %+v, want Capture Index=1", root)
	}
}

func TestParseQuantifiers(t *testing.T) {
	cases := []struct {
		pattern        string
		min, max int
	}{
		{"a*", 0, -1},
		{"a+", 1, -1},
		{"a?", 0, 1},
		{"a{3,5}", 3, 5},
		{"a{2,}", 2, -1},
		{"a{4}", 4, 4},
	}
	for _, c := range cases {
		tree := mustParse(t, c.pattern)
		root := tree.Get(tree.Root)
		if root.Kind != ast.KindRepeat || root.Min != c.min || root.Max != c.max {
			t.Errorf("%q: got %+v, want Min=%d Max=%d", c.pattern, root, c.min, c.max)
		}
	}
}

func TestParseQuantifierModifiers(t *testing.T) {
	tree := mustParse(t, "a*?")
	root := tree.Get(tree.Root)
	if root.Modifier != ast.Lazy {
		t.Errorf("got %v, want Lazy", root.Modifier)
	}

	tree = mustParse(t, "a*+")
	root = tree.Get(tree.Root)
	if root.Modifier != ast.Possessive {
		t.Errorf("got %v, want Possessive", root.Modifier)
	}
}

func TestParseCharClass(t *testing.T) {
	tree := mustParse(t, "[a-z0-9]")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindClass || root.Inverted {
		t.Fatalf("got %+v, want non-inverted Class", root)
	}
	set := root.Set
	for _, b := range []byte("m5") {
		if set[b>>3]&(1<<(b&7)) == 0 {
			t.Errorf("expected class to contain %q", b)
		}
	}
	if set['!'>>3]&(1<<('!'&7)) != 0 {
		t.Error("expected class to not contain '!'")
	}
}

func TestParseCharClassInverted(t *testing.T) {
	tree := mustParse(t, "[^abc]")
	root := tree.Get(tree.Root)
	if !root.Inverted {
		t.Fatal("expected Inverted = true")
	}
}

func TestParseShorthandClassNegated(t *testing.T) {
	tree := mustParse(t, `\D`)
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindClass || !root.Inverted {
		t.Fatalf("got %+v, want inverted Class", root)
	}
}

func TestParseBackreference(t *testing.T) {
	tree := mustParse(t, `(a)\1`)
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindConcat || len(root.Children) != 2 {
		t.Fatalf("got %+v, want Concat of 2", root)
	}
	ref := tree.Get(root.Children[1])
	if ref.Kind != ast.KindBackref || ref.Index != 1 {
		t.Fatalf("got %+v, want Backref Index=1", ref)
	}
}

func TestParseBackrefOutOfRangeError(t *testing.T) {
	_, err := Parse(`\1`)
	if err == nil {
		t.Fatal("expected error for out-of-range backreference")
	}
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(pe.Err, ErrBackrefOutOfRange) {
		t.Fatalf("got %v, want ErrBackrefOutOfRange", err)
	}
}

func TestParseUnmatchedParenError(t *testing.T) {
	_, err := Parse("(a")
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(pe.Err, ErrUnmatchedParen) {
		t.Fatalf("got %v, want ErrUnmatchedParen", err)
	}
}

func TestParseUnexpectedRParenError(t *testing.T) {
	_, err := Parse("a)")
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(pe.Err, ErrUnexpectedRParen) {
		t.Fatalf("got %v, want ErrUnexpectedRParen", err)
	}
}

func TestParseDanglingQuantifierError(t *testing.T) {
	_, err := Parse("*a")
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(pe.Err, ErrDanglingQuantifier) {
		t.Fatalf("got %v, want ErrDanglingQuantifier", err)
	}
}

func TestParseStackedQuantifierError(t *testing.T) {
	_, err := Parse("a**")
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(pe.Err, ErrStackedQuantifier) {
		t.Fatalf("got %v, want ErrStackedQuantifier", err)
	}
}

func TestParseInvalidRepeatBoundsError(t *testing.T) {
	_, err := Parse("a{5,2}")
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(pe.Err, ErrInvalidRepeatBounds) {
		t.Fatalf("got %v, want ErrInvalidRepeatBounds", err)
	}
}

func TestParseTooManyCapturesError(t *testing.T) {
	pattern := ""
	for i := 0; i < 10; i++ {
		pattern += "(a)"
	}
	_, err := Parse(pattern)
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(pe.Err, ErrTooManyCaptures) {
		t.Fatalf("got %v, want ErrTooManyCaptures", err)
	}
}

func TestParseEmptyAlternativeBranch(t *testing.T) {
	tree := mustParse(t, "a|")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindAlt || len(root.Children) != 2 {
		t.Fatalf("got %+v, want Alt of 2", root)
	}
	empty := tree.Get(root.Children[1])
	if empty.Kind != ast.KindEmpty {
		t.Errorf("got %+v, want Empty", empty)
	}
}

func TestParseAnchors(t *testing.T) {
	tree := mustParse(t, "^exact$")
	root := tree.Get(tree.Root)
	if root.Kind != ast.KindConcat || len(root.Children) != 7 {
		t.Fatalf("got %+v, want Concat of 7", root)
	}
	if tree.Get(root.Children[0]).Kind != ast.KindLineStart {
		t.Error("expected first child to be LineStart")
	}
	if tree.Get(root.Children[6]).Kind != ast.KindLineEnd {
		t.Error("expected last child to be LineEnd")
	}
}

func TestParseWordBoundary(t *testing.T) {
	tree := mustParse(t, `\bfoo\B`)
	root := tree.Get(tree.Root)
	if tree.Get(root.Children[0]).Kind != ast.KindWordBoundary {
		t.Error("expected first child to be WordBoundary")
	}
	if tree.Get(root.Children[len(root.Children)-1]).Kind != ast.KindNotWordBoundary {
		t.Error("expected last child to be NotWordBoundary")
	}
}
