// Package lexer converts ECMAScript-flavored regex pattern text into an
// on-demand token stream for the parser.
//
// The Lexer holds a stateful cursor into the pattern and exposes Peek/Next
// exactly like the iterator-style lexers used across the corpus this
// engine is grounded on; tokens are produced lazily and are not retained
// once the parser has consumed them.
package lexer

import "github.com/vmrex/vmrex/internal/bitset"

// Lexer scans a pattern string into Tokens on demand.
type Lexer struct {
	pattern string
	pos     int

	hasLookahead bool
	lookahead    Token
}

// New creates a Lexer over pattern.
func New(pattern string) *Lexer {
	return &Lexer{pattern: pattern}
}

// Pos returns the current byte offset into the pattern.
func (l *Lexer) Pos() int { return l.pos }

func (l *Lexer) eof() bool { return l.pos >= len(l.pattern) }

func (l *Lexer) byteAt(off int) byte {
	if l.pos+off >= len(l.pattern) {
		return 0
	}
	return l.pattern[l.pos+off]
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.hasLookahead {
		return l.lookahead, nil
	}
	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	l.lookahead = tok
	l.hasLookahead = true
	return tok, nil
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.hasLookahead {
		l.hasLookahead = false
		return l.lookahead, nil
	}
	return l.scan()
}

// scan recognizes and returns the next token, advancing the cursor past it.
func (l *Lexer) scan() (Token, error) {
	if l.eof() {
		return Token{Kind: TokEOF, Pos: l.pos}, nil
	}

	start := l.pos
	c := l.pattern[l.pos]

	switch c {
	case '.':
		l.pos++
		return Token{Kind: TokDot, Pos: start}, nil
	case '^':
		l.pos++
		return Token{Kind: TokCaret, Pos: start}, nil
	case '$':
		l.pos++
		return Token{Kind: TokDollar, Pos: start}, nil
	case '|':
		l.pos++
		return Token{Kind: TokPipe, Pos: start}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen, Pos: start}, nil
	case '[':
		l.pos++
		return Token{Kind: TokLBracket, Pos: start}, nil
	case '(':
		return l.scanGroupIntroducer(start)
	case '*':
		l.pos++
		return Token{Kind: TokStar, Pos: start, Modifier: l.scanModifier()}, nil
	case '+':
		l.pos++
		return Token{Kind: TokPlus, Pos: start, Modifier: l.scanModifier()}, nil
	case '?':
		l.pos++
		return Token{Kind: TokQuestion, Pos: start, Modifier: l.scanModifier()}, nil
	case '{':
		return l.scanRepeat(start)
	case '\\':
		return l.scanEscape(start)
	default:
		l.pos++
		return Token{Kind: TokChar, Pos: start, Char: c}, nil
	}
}

// scanModifier consumes a trailing '?' (lazy) or '+' (possessive) quantifier
// suffix, if present, and reports which.
func (l *Lexer) scanModifier() Modifier {
	if l.eof() {
		return Greedy
	}
	switch l.pattern[l.pos] {
	case '?':
		l.pos++
		return Lazy
	case '+':
		l.pos++
		return Possessive
	default:
		return Greedy
	}
}

// scanGroupIntroducer dispatches "(", "(?:", "(?=", "(?!", "(?<=", "(?<!",
// and the named-capture forms "(?P<name>"/"(?<name>".
func (l *Lexer) scanGroupIntroducer(start int) (Token, error) {
	l.pos++ // consume '('
	if l.eof() || l.pattern[l.pos] != '?' {
		return Token{Kind: TokLParen, Pos: start}, nil
	}
	l.pos++ // consume '?'

	if l.eof() {
		return Token{}, &Error{Pos: l.pos, Err: ErrInvalidGroupIntro}
	}

	switch l.pattern[l.pos] {
	case ':':
		l.pos++
		return Token{Kind: TokNonCapLParen, Pos: start}, nil
	case '=':
		l.pos++
		return Token{Kind: TokLookaheadStart, Pos: start}, nil
	case '!':
		l.pos++
		return Token{Kind: TokNegLookahead, Pos: start}, nil
	case '<':
		return l.scanLookbehindOrNamedGroup(start)
	case 'P':
		if l.byteAt(1) == '<' {
			l.pos += 2
			return l.scanNamedGroupName(start)
		}
	}
	return Token{}, &Error{Pos: start, Err: ErrInvalidGroupIntro}
}

func (l *Lexer) scanLookbehindOrNamedGroup(start int) (Token, error) {
	l.pos++ // consume '<'
	if l.eof() {
		return Token{}, &Error{Pos: l.pos, Err: ErrInvalidGroupIntro}
	}
	switch l.pattern[l.pos] {
	case '=':
		l.pos++
		return Token{Kind: TokLookbehindStart, Pos: start}, nil
	case '!':
		l.pos++
		return Token{Kind: TokNegLookbehind, Pos: start}, nil
	default:
		return l.scanNamedGroupName(start)
	}
}

// scanNamedGroupName consumes a capture group name up to and including the
// closing '>'. The name itself is discarded by the parser (spec.md Open
// Question 1: named captures are tokenized but not executed).
func (l *Lexer) scanNamedGroupName(start int) (Token, error) {
	for !l.eof() && l.pattern[l.pos] != '>' {
		l.pos++
	}
	if l.eof() {
		return Token{}, &Error{Pos: l.pos, Err: ErrInvalidGroupIntro}
	}
	l.pos++ // consume '>'
	return Token{Kind: TokNamedGroupStart, Pos: start}, nil
}

// scanRepeat recognizes "{n}", "{n,}", "{n,m}" and folds a following lazy
// or possessive modifier into the token.
func (l *Lexer) scanRepeat(start int) (Token, error) {
	l.pos++ // consume '{'
	min, ok := l.scanDigits()
	if !ok {
		return Token{}, &Error{Pos: start, Err: ErrInvalidRepeat}
	}
	max := min
	if !l.eof() && l.pattern[l.pos] == ',' {
		l.pos++
		if !l.eof() && l.pattern[l.pos] == '}' {
			max = -1
		} else {
			m, ok := l.scanDigits()
			if !ok {
				return Token{}, &Error{Pos: start, Err: ErrInvalidRepeat}
			}
			max = m
		}
	}
	if l.eof() || l.pattern[l.pos] != '}' {
		return Token{}, &Error{Pos: start, Err: ErrUnterminatedRepeat}
	}
	l.pos++ // consume '}'
	return Token{Kind: TokRepeat, Pos: start, Min: min, Max: max, Modifier: l.scanModifier()}, nil
}

func (l *Lexer) scanDigits() (int, bool) {
	begin := l.pos
	n := 0
	for !l.eof() && l.pattern[l.pos] >= '0' && l.pattern[l.pos] <= '9' {
		n = n*10 + int(l.pattern[l.pos]-'0')
		l.pos++
	}
	if l.pos == begin {
		return 0, false
	}
	return n, true
}

// scanEscape handles every "\X" form: shorthand classes, word boundaries,
// control escapes, digit backreferences, and metachar literal-escapes.
func (l *Lexer) scanEscape(start int) (Token, error) {
	l.pos++ // consume '\\'
	if l.eof() {
		return Token{}, &Error{Pos: start, Err: ErrTrailingBackslash}
	}
	c := l.pattern[l.pos]
	l.pos++

	switch c {
	case 'd':
		return Token{Kind: TokDigit, Pos: start}, nil
	case 'D':
		return Token{Kind: TokNotDigit, Pos: start}, nil
	case 'w':
		return Token{Kind: TokWord, Pos: start}, nil
	case 'W':
		return Token{Kind: TokNotWord, Pos: start}, nil
	case 's':
		return Token{Kind: TokSpace, Pos: start}, nil
	case 'S':
		return Token{Kind: TokNotSpace, Pos: start}, nil
	case 'b':
		return Token{Kind: TokWordBoundary, Pos: start}, nil
	case 'B':
		return Token{Kind: TokNotWordBoundary, Pos: start}, nil
	case 'n':
		return Token{Kind: TokChar, Pos: start, Char: '\n'}, nil
	case 'r':
		return Token{Kind: TokChar, Pos: start, Char: '\r'}, nil
	case 't':
		return Token{Kind: TokChar, Pos: start, Char: '\t'}, nil
	case 'f':
		return Token{Kind: TokChar, Pos: start, Char: '\f'}, nil
	case 'v':
		return Token{Kind: TokChar, Pos: start, Char: '\v'}, nil
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return Token{Kind: TokBackref, Pos: start, RefIndex: int(c - '0')}, nil
	default:
		// Literal-escape of any metacharacter (and of any other byte,
		// which is harmless: "\a" just means "a").
		return Token{Kind: TokChar, Pos: start, Char: c}, nil
	}
}

// ClassItemKind distinguishes the three shapes a bracket-expression element
// can take.
type ClassItemKind uint8

const (
	ClassItemChar ClassItemKind = iota
	ClassItemRange
	ClassItemShorthand
)

// ClassItem is one element parsed from inside a "[...]" expression.
type ClassItem struct {
	Kind ClassItemKind
	Lo   byte // ClassItemChar, ClassItemRange
	Hi   byte // ClassItemRange
	Set  bitset.CharSet // ClassItemShorthand
}

// ScanClass consumes a bracket expression's body, starting immediately
// after the TokLBracket that the caller already consumed, through and
// including the closing ']'. A leading '^' is consumed here. It returns
// the parsed items and whether the class was negated.
//
// Character classes get their own scanning pass, separate from the
// general token stream, because escaping rules differ inside brackets
// (']' and '-' are metacharacters only in certain positions) — the same
// division of labor the wider pack's regex lexers use.
func (l *Lexer) ScanClass() (items []ClassItem, inverted bool, err error) {
	if !l.eof() && l.pattern[l.pos] == '^' {
		inverted = true
		l.pos++
	}

	first := true
	for {
		if l.eof() {
			return nil, false, &Error{Pos: l.pos, Err: ErrUnterminatedClass}
		}
		if l.pattern[l.pos] == ']' && !first {
			l.pos++
			if len(items) == 0 {
				return nil, false, &Error{Pos: l.pos, Err: ErrEmptyClass}
			}
			return items, inverted, nil
		}

		item, shorthand, err := l.scanClassAtom()
		if err != nil {
			return nil, false, err
		}
		first = false

		if shorthand {
			items = append(items, item)
			continue
		}

		// Check for a range: "lo-hi", but '-' at the end (immediately
		// before ']') is literal, and a shorthand class can't anchor a
		// range.
		if !l.eof() && l.pattern[l.pos] == '-' && l.byteAt(1) != ']' && l.byteAt(1) != 0 {
			l.pos++ // consume '-'
			hi, hiShort, err := l.scanClassAtom()
			if err != nil {
				return nil, false, err
			}
			if hiShort {
				return nil, false, &Error{Pos: l.pos, Err: ErrInvalidRange}
			}
			if hi.Lo < item.Lo {
				return nil, false, &Error{Pos: l.pos, Err: ErrInvalidRange}
			}
			items = append(items, ClassItem{Kind: ClassItemRange, Lo: item.Lo, Hi: hi.Lo})
			continue
		}

		items = append(items, ClassItem{Kind: ClassItemChar, Lo: item.Lo})
	}
}

// scanClassAtom reads one character-class atom: a literal byte, a control
// escape, a literal-escaped metachar, or a shorthand class. The bool
// return reports whether the atom was a shorthand class (ignoring Hi/Lo).
func (l *Lexer) scanClassAtom() (ClassItem, bool, error) {
	c := l.pattern[l.pos]
	if c != '\\' {
		l.pos++
		return ClassItem{Lo: c}, false, nil
	}

	l.pos++ // consume '\\'
	if l.eof() {
		return ClassItem{}, false, &Error{Pos: l.pos, Err: ErrTrailingBackslash}
	}
	e := l.pattern[l.pos]
	l.pos++

	switch e {
	case 'd':
		return ClassItem{Kind: ClassItemShorthand, Set: bitset.Digit()}, true, nil
	case 'D':
		s := bitset.Digit()
		s.Invert()
		return ClassItem{Kind: ClassItemShorthand, Set: s}, true, nil
	case 'w':
		return ClassItem{Kind: ClassItemShorthand, Set: bitset.Word()}, true, nil
	case 'W':
		s := bitset.Word()
		s.Invert()
		return ClassItem{Kind: ClassItemShorthand, Set: s}, true, nil
	case 's':
		return ClassItem{Kind: ClassItemShorthand, Set: bitset.Space()}, true, nil
	case 'S':
		s := bitset.Space()
		s.Invert()
		return ClassItem{Kind: ClassItemShorthand, Set: s}, true, nil
	case 'n':
		return ClassItem{Lo: '\n'}, false, nil
	case 'r':
		return ClassItem{Lo: '\r'}, false, nil
	case 't':
		return ClassItem{Lo: '\t'}, false, nil
	case 'f':
		return ClassItem{Lo: '\f'}, false, nil
	case 'v':
		return ClassItem{Lo: '\v'}, false, nil
	default:
		return ClassItem{Lo: e}, false, nil
	}
}
