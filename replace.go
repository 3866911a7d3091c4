package vmrex

// Replace returns a copy of haystack with every non-overlapping match of
// the pattern substituted by replacement. replacement may reference
// capture groups with $1-$9 or the whole match with $0; a literal
// dollar sign is written as $$. A $n with no corresponding group (either
// out of range, or unmatched in that particular occurrence) expands to
// the empty string.
//
// Example:
//
//	re := vmrex.MustCompile(`(\w+)@(\w+)`)
//	out := re.Replace([]byte("contact user@host please"), []byte("$1 at $2"))
//	// out = "contact user at host please"
func (r *Regexp) Replace(haystack, replacement []byte) []byte {
	matches := r.FindAllMatch(haystack, -1)
	if matches == nil {
		out := make([]byte, len(haystack))
		copy(out, haystack)
		return out
	}

	var out []byte
	pos := 0
	for _, m := range matches {
		out = append(out, haystack[pos:m.Start()]...)
		out = expandTemplate(out, replacement, haystack, m)
		pos = m.End()
	}
	out = append(out, haystack[pos:]...)
	return out
}

// ReplaceString is Replace for strings.
func (r *Regexp) ReplaceString(s, replacement string) string {
	return string(r.Replace([]byte(s), []byte(replacement)))
}

// expandTemplate appends replacement to dst, expanding $0-$9 against m's
// groups and $$ to a literal $.
func expandTemplate(dst, replacement, haystack []byte, m *Match) []byte {
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c != '$' || i+1 >= len(replacement) {
			dst = append(dst, c)
			continue
		}

		next := replacement[i+1]
		switch {
		case next == '$':
			dst = append(dst, '$')
			i++
		case next >= '0' && next <= '9':
			n := int(next - '0')
			if n == 0 {
				dst = append(dst, m.Bytes()...)
			} else {
				span := m.GroupIndex(n)
				if span[0] >= 0 {
					dst = append(dst, haystack[span[0]:span[1]]...)
				}
			}
			i++
		default:
			dst = append(dst, c)
		}
	}
	return dst
}
