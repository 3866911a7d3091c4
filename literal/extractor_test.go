package literal

import (
	"testing"

	"github.com/vmrex/vmrex/ast"
	"github.com/vmrex/vmrex/parser"
)

func mustParse(t *testing.T, pattern string) *ast.Tree {
	t.Helper()
	tree, err := parser.Parse(pattern)
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	return tree
}

func TestRequiredPrefixPlainLiteral(t *testing.T) {
	tree := mustParse(t, "hello")
	got := requiredPrefix(tree, tree.Root)
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
}

func TestRequiredPrefixStopsAtClass(t *testing.T) {
	tree := mustParse(t, "ab[cd]ef")
	got := requiredPrefix(tree, tree.Root)
	if string(got) != "ab" {
		t.Fatalf("got %q, want ab", got)
	}
}

func TestRequiredPrefixStopsAtRepeat(t *testing.T) {
	tree := mustParse(t, "abc*")
	got := requiredPrefix(tree, tree.Root)
	if string(got) != "ab" {
		t.Fatalf("got %q, want ab", got)
	}
}

func TestRequiredPrefixThroughCaptureGroup(t *testing.T) {
	tree := mustParse(t, "(ab)cd")
	got := requiredPrefix(tree, tree.Root)
	if string(got) != "abcd" {
		t.Fatalf("got %q, want abcd", got)
	}
}

func TestRequiredPrefixNoneForLeadingClass(t *testing.T) {
	tree := mustParse(t, "[ab]cd")
	got := requiredPrefix(tree, tree.Root)
	if len(got) != 0 {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestRequiredPrefixNoneForAlternation(t *testing.T) {
	tree := mustParse(t, "cat|dog")
	got := requiredPrefix(tree, tree.Root)
	if len(got) != 0 {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestLiteralAlternativesAllLiteral(t *testing.T) {
	tree := mustParse(t, "cat|dog|bird")
	lits := literalAlternatives(tree, tree.Root)
	if len(lits) != 3 {
		t.Fatalf("got %d literals, want 3", len(lits))
	}
	want := []string{"cat", "dog", "bird"}
	for i, w := range want {
		if string(lits[i].Bytes) != w {
			t.Fatalf("literal %d = %q, want %q", i, lits[i].Bytes, w)
		}
	}
}

func TestLiteralAlternativesRejectsNonLiteralBranch(t *testing.T) {
	tree := mustParse(t, "cat|do[gx]")
	lits := literalAlternatives(tree, tree.Root)
	if lits != nil {
		t.Fatalf("got %v, want nil", lits)
	}
}

func TestLiteralAlternativesRejectsNonAlternationRoot(t *testing.T) {
	tree := mustParse(t, "cat")
	lits := literalAlternatives(tree, tree.Root)
	if lits != nil {
		t.Fatalf("got %v, want nil", lits)
	}
}

func TestBuildPrefersPrefixOverAlternation(t *testing.T) {
	tree := mustParse(t, "cathouse|catnap")
	pf := Build(tree, false)
	if pf == nil {
		t.Fatal("expected a prefilter")
	}
	lp, ok := pf.(*literalPrefilter)
	if !ok {
		t.Fatalf("got %T, want *literalPrefilter", pf)
	}
	if string(lp.prefix) != "cat" {
		t.Fatalf("got prefix %q, want cat", lp.prefix)
	}
}

func TestBuildFallsBackToAlternation(t *testing.T) {
	tree := mustParse(t, "cat|dog|bird")
	pf := Build(tree, false)
	if pf == nil {
		t.Fatal("expected a prefilter")
	}
	if _, ok := pf.(*alternationPrefilter); !ok {
		t.Fatalf("got %T, want *alternationPrefilter", pf)
	}
}

func TestBuildReturnsNilForNoLiteralStructure(t *testing.T) {
	tree := mustParse(t, "[abc]+")
	if pf := Build(tree, false); pf != nil {
		t.Fatalf("got %T, want nil", pf)
	}
}

func TestBuildPlainLiteralUsesLiteralPrefilter(t *testing.T) {
	tree := mustParse(t, "cat")
	pf := Build(tree, false)
	if pf == nil {
		t.Fatal("expected a prefilter for a plain literal")
	}
	if _, ok := pf.(*literalPrefilter); !ok {
		t.Fatalf("got %T, want *literalPrefilter", pf)
	}
}

func TestFullyLiteralEmptyNode(t *testing.T) {
	tree := mustParse(t, "a|")
	// second branch of "a|" is KindEmpty; alternation extraction requires
	// non-empty literals so this must not qualify.
	lits := literalAlternatives(tree, tree.Root)
	if lits != nil {
		t.Fatalf("got %v, want nil (empty branch disqualifies)", lits)
	}
}
