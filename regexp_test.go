package vmrex

import (
	"testing"

	"github.com/vmrex/vmrex/compiler"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"simple literal", "hello", false},
		{"digit", `\d`, false},
		{"word", `\w+`, false},
		{"alternation", "foo|bar", false},
		{"repetition", "a+", false},
		{"lookaround", "foo(?=bar)", false},
		{"backreference", `(\w+) \1`, false},
		{"unmatched paren", "(", true},
		{"unmatched bracket", "[a-z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && re == nil {
				t.Fatal("Compile() returned nil with no error")
			}
		})
	}
}

func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCompile() did not panic on invalid pattern")
		}
	}()
	MustCompile("(")
}

func TestTestAnchorsBothEnds(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`\d+`, "123", true},
		{`\d+`, "a123b", false},
		{`\d+`, "123b", false},
		{`a*`, "", true},
		{`a*`, "aaa", true},
		{`hello`, "hello world", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.TestString(tt.input); got != tt.want {
				t.Errorf("Test(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindLeftmost(t *testing.T) {
	re := MustCompile(`\d+`)
	m := re.Find([]byte("age: 42, id: 7"))
	if string(m) != "42" {
		t.Fatalf("Find = %q, want %q", m, "42")
	}
}

func TestFindStringIndex(t *testing.T) {
	re := MustCompile(`\d+`)
	loc := re.FindStringIndex("age: 42")
	if loc == nil || loc[0] != 5 || loc[1] != 7 {
		t.Fatalf("FindStringIndex = %v, want [5 7]", loc)
	}
}

func TestFindAllString(t *testing.T) {
	re := MustCompile(`\d+`)
	got := re.FindAllString("1 22 333", -1)
	want := []string{"1", "22", "333"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindAllStringLimitedCount(t *testing.T) {
	re := MustCompile(`\d+`)
	got := re.FindAllString("1 22 333", 2)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
}

func TestFindSubmatch(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)\.(\w+)`)
	got := re.FindStringSubmatch("user@example.com")
	want := []string{"user@example.com", "user", "example", "com"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindSubmatchUnmatchedGroup(t *testing.T) {
	re := MustCompile(`(a)|(b)`)
	got := re.FindStringSubmatch("b")
	if got[0] != "b" || got[1] != "" || got[2] != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestFindSubmatchIndex(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)`)
	idx := re.FindSubmatchIndex([]byte("user@host"))
	want := []int{0, 9, 0, 4, 5, 9}
	if len(idx) != len(want) {
		t.Fatalf("got %v, want %v", idx, want)
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("idx[%d] = %d, want %d", i, idx[i], want[i])
		}
	}
}

func TestStringReturnsSourcePattern(t *testing.T) {
	re := MustCompile(`\d+`)
	if re.String() != `\d+` {
		t.Fatalf("String() = %q, want %q", re.String(), `\d+`)
	}
}

func TestNumSubexp(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)\.(\w+)`)
	if re.NumSubexp() != 3 {
		t.Fatalf("NumSubexp() = %d, want 3", re.NumSubexp())
	}
}

func TestCompileWithOptionsRejectsInvalidConfig(t *testing.T) {
	opts := CompileOptions{MaxRecursionDepth: 0, MaxSteps: 100}
	_, err := CompileWithOptions(`a`, opts)
	if err == nil {
		t.Fatal("expected a config validation error")
	}
}

// TestCaseInsensitiveSurvivesAggressivePrefilter guards against a
// prefilter extracted from the pattern's raw, un-folded literal bytes
// silently discarding every candidate in a differently-cased haystack:
// LevelAggressive must still find matches that only exist case-insensitively.
func TestCaseInsensitiveSurvivesAggressivePrefilter(t *testing.T) {
	opts := CompileOptions{OptLevel: compiler.LevelAggressive, CaseInsensitive: true, MaxSteps: 1000, MaxRecursionDepth: 10}
	re, err := CompileWithOptions(`hello`, opts)
	if err != nil {
		t.Fatalf("CompileWithOptions: %v", err)
	}
	loc := re.FindStringIndex("say HELLO there")
	if loc == nil {
		t.Fatal("expected a case-insensitive match, got none")
	}
	if loc[0] != 4 || loc[1] != 9 {
		t.Fatalf("FindStringIndex = %v, want [4 9]", loc)
	}

	if !re.TestString("HELLO") {
		t.Fatal("expected case-insensitive pattern to match all-caps input")
	}
}

// TestCaseInsensitiveSurvivesAggressiveAlternationPrefilter exercises the
// alternation branch of the prefilter (three or more literal branches),
// which normally builds an Aho-Corasick automaton that has no
// case-folding mode.
func TestCaseInsensitiveSurvivesAggressiveAlternationPrefilter(t *testing.T) {
	opts := CompileOptions{OptLevel: compiler.LevelAggressive, CaseInsensitive: true, MaxSteps: 1000, MaxRecursionDepth: 10}
	re, err := CompileWithOptions(`cat|dog|bird`, opts)
	if err != nil {
		t.Fatalf("CompileWithOptions: %v", err)
	}
	loc := re.FindStringIndex("a BIRD flew by")
	if loc == nil || loc[0] != 2 || loc[1] != 6 {
		t.Fatalf("got %v, want [2 6]", loc)
	}
}

func TestConcurrentSearchesAreIndependent(t *testing.T) {
	re := MustCompile(`\d+`)
	done := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- true }()
			for j := 0; j < 100; j++ {
				if !re.Test([]byte("42")) {
					t.Error("expected match")
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
