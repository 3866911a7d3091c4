package vmrex

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"a.b*c", `a\.b\*c`},
		{"$5.00", `\$5\.00`},
		{"(a|b)", `\(a\|b\)`},
		{`back\slash`, `back\\slash`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	inputs := []string{"a.b*c", "price: $5.99", "(hello)", "a[b]c{d}", `\n`}
	for _, s := range inputs {
		escaped := Escape(s)
		if !IsValidPattern(escaped) {
			t.Fatalf("Escape(%q) = %q is not a valid pattern", s, escaped)
		}
		re := MustCompile(escaped)
		if !re.TestString(s) {
			t.Fatalf("Test(Escape(%q), %q) = false, want true", s, s)
		}
	}
}

func TestIsValidPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{`\d+`, true},
		{"(a|b)", true},
		{"(", false},
		{"[a-z", false},
		{"a{", false},
	}
	for _, tt := range tests {
		if got := IsValidPattern(tt.pattern); got != tt.want {
			t.Errorf("IsValidPattern(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}
