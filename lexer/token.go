package lexer

// Kind identifies the grammatical category of a Token.
type Kind uint8

//go:generate stringer -type=Kind -trimprefix=Tok
const (
	TokEOF Kind = iota

	// TokChar is a literal byte to match, whether written directly
	// ("a"), via a metachar escape ("\."), or via a control escape
	// ("\n", "\r", "\t").
	TokChar

	TokDot // .

	TokCaret  // ^
	TokDollar // $

	TokPipe // |

	TokLParen          // (        -- capturing group
	TokNonCapLParen    // (?:      -- non-capturing group
	TokLookaheadStart  // (?=
	TokNegLookahead    // (?!
	TokLookbehindStart // (?<=
	TokNegLookbehind   // (?<!
	TokNamedGroupStart // (?P<name> or (?<name>  -- tokenized, folded to a plain capturing group by the parser
	TokRParen          // )

	TokLBracket // [   -- the parser hands off to Lexer.ScanClass for the body

	// Quantifiers. Min/Max on the Token give the repeat bounds for
	// TokRepeat; the trailing '?' (lazy) or '+' (possessive) modifier is
	// folded into Modifier rather than becoming a separate token, so a
	// single Token fully describes "what to repeat and how eagerly".
	TokStar
	TokPlus
	TokQuestion
	TokRepeat // {n}, {n,}, {n,m}

	// Shorthand classes, expanded by the parser into bit-table character
	// classes (design decision in spec.md §4.2: keeps codegen uniform).
	TokDigit    // \d
	TokNotDigit // \D
	TokWord     // \w
	TokNotWord  // \W
	TokSpace    // \s
	TokNotSpace // \S

	TokWordBoundary    // \b
	TokNotWordBoundary // \B

	TokBackref // \1 .. \9
)

// Modifier refines a quantifier token: greedy (default), lazy ('?'
// suffix), or possessive ('+' suffix).
type Modifier uint8

const (
	Greedy Modifier = iota
	Lazy
	Possessive
)

// Token is a single lexical unit: its Kind, the byte offset in the
// pattern where it starts (for error reporting), and kind-specific
// payload fields. Only the fields relevant to Kind are meaningful.
type Token struct {
	Kind Kind
	Pos  int

	Char     byte     // TokChar
	Modifier Modifier // TokStar, TokPlus, TokQuestion, TokRepeat
	Min, Max int       // TokRepeat; Max == -1 means unbounded ("{n,}")
	RefIndex int       // TokBackref: 1..9
}
