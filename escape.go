package vmrex

import "strings"

// metacharacters mirrors lexer.Lexer's special-byte set: every byte that
// begins or ends a grammar construct (anchors, groups, classes,
// quantifiers, alternation) plus the escape character itself.
const metacharacters = `.^$|()[]{}*+?\`

// Escape returns s with every regex metacharacter preceded by a
// backslash, so the result matches s literally when compiled as a
// pattern.
//
// Example:
//
//	vmrex.Escape(`a.b*c`) // `a\.b\*c`
func Escape(s string) string {
	if !strings.ContainsAny(s, metacharacters) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(metacharacters, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// IsValidPattern reports whether s would compile successfully as a
// pattern with DefaultOptions.
//
// Example:
//
//	vmrex.IsValidPattern(`(a|b`) // false: unmatched '('
func IsValidPattern(s string) bool {
	_, err := Compile(s)
	return err == nil
}
