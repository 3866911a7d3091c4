// Package parser turns a lexer.Lexer token stream into an ast.Tree via
// recursive descent, one method per grammar rule:
// pattern -> alternation -> sequence -> quantified -> atom.
package parser

import (
	"github.com/vmrex/vmrex/ast"
	"github.com/vmrex/vmrex/internal/bitset"
	"github.com/vmrex/vmrex/lexer"
)

// maxCaptures bounds capturing groups to 9 so every backreference stays
// addressable with a single digit (\1-\9).
const maxCaptures = 9

// Parser builds an ast.Tree from pattern text.
type Parser struct {
	pattern      string
	lex          *lexer.Lexer
	tree         *ast.Tree
	captureCount int
}

// Parse compiles pattern into an ast.Tree, or returns a *Error describing
// the first syntax problem encountered.
func Parse(pattern string) (*ast.Tree, error) {
	p := &Parser{
		pattern: pattern,
		lex:     lexer.New(pattern),
		tree:    ast.New(len(pattern) + 1),
	}

	root, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}

	tok, err := p.lex.Next()
	if err != nil {
		return nil, p.wrap(tok.Pos, err)
	}
	if tok.Kind == lexer.TokRParen {
		return nil, p.err(tok.Pos, ErrUnexpectedRParen)
	}
	if tok.Kind != lexer.TokEOF {
		return nil, p.err(tok.Pos, ErrTrailingInput)
	}

	p.tree.Root = root
	p.tree.CaptureCount = p.captureCount
	return p.tree, nil
}

func (p *Parser) err(pos int, e error) error {
	return &Error{Pattern: p.pattern, Pos: pos, Err: e}
}

func (p *Parser) wrap(pos int, e error) error {
	if se, ok := e.(*lexer.Error); ok {
		return &Error{Pattern: p.pattern, Pos: se.Pos, Err: se.Err}
	}
	return p.err(pos, e)
}

// parseAlternation := sequence ('|' sequence)*
func (p *Parser) parseAlternation() (ast.NodeID, error) {
	first, err := p.parseSequence()
	if err != nil {
		return ast.NilNode, err
	}

	branches := []ast.NodeID{first}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return ast.NilNode, p.wrap(tok.Pos, err)
		}
		if tok.Kind != lexer.TokPipe {
			break
		}
		p.lex.Next() // consume '|'

		next, err := p.parseSequence()
		if err != nil {
			return ast.NilNode, err
		}
		branches = append(branches, next)
	}

	if len(branches) == 1 {
		return branches[0], nil
	}
	return p.tree.Add(ast.Node{Kind: ast.KindAlt, Children: branches}), nil
}

// parseSequence := quantified*  (stops at '|', ')', or EOF; zero terms is
// a valid empty alternative, e.g. in "a|" or "()").
func (p *Parser) parseSequence() (ast.NodeID, error) {
	var terms []ast.NodeID
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return ast.NilNode, p.wrap(tok.Pos, err)
		}
		if tok.Kind == lexer.TokEOF || tok.Kind == lexer.TokPipe || tok.Kind == lexer.TokRParen {
			break
		}

		term, err := p.parseQuantified()
		if err != nil {
			return ast.NilNode, err
		}
		terms = append(terms, term)
	}

	switch len(terms) {
	case 0:
		return p.tree.Add(ast.Node{Kind: ast.KindEmpty}), nil
	case 1:
		return terms[0], nil
	default:
		return p.tree.Add(ast.Node{Kind: ast.KindConcat, Children: terms}), nil
	}
}

// parseQuantified := atom ( '*' | '+' | '?' | '{n,m}' )?
// A second quantifier stacked directly on the first ("a{2}{3}") is
// rejected rather than silently accepted, matching the common engine
// convention that quantifiers apply to exactly one atom.
func (p *Parser) parseQuantified() (ast.NodeID, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return ast.NilNode, err
	}

	tok, err := p.lex.Peek()
	if err != nil {
		return ast.NilNode, p.wrap(tok.Pos, err)
	}
	if !isQuantifierKind(tok.Kind) {
		return atom, nil
	}
	p.lex.Next()

	min, max, err := quantifierBounds(tok)
	if err != nil {
		return ast.NilNode, p.err(tok.Pos, err)
	}

	repeat := p.tree.Add(ast.Node{
		Kind:     ast.KindRepeat,
		Child:    atom,
		Min:      min,
		Max:      max,
		Modifier: ast.Modifier(tok.Modifier),
	})

	again, err := p.lex.Peek()
	if err != nil {
		return ast.NilNode, p.wrap(again.Pos, err)
	}
	if isQuantifierKind(again.Kind) {
		return ast.NilNode, p.err(again.Pos, ErrStackedQuantifier)
	}

	return repeat, nil
}

func isQuantifierKind(k lexer.Kind) bool {
	return k == lexer.TokStar || k == lexer.TokPlus || k == lexer.TokQuestion || k == lexer.TokRepeat
}

func quantifierBounds(tok lexer.Token) (min, max int, err error) {
	switch tok.Kind {
	case lexer.TokStar:
		return 0, -1, nil
	case lexer.TokPlus:
		return 1, -1, nil
	case lexer.TokQuestion:
		return 0, 1, nil
	case lexer.TokRepeat:
		if tok.Max != -1 && tok.Min > tok.Max {
			return 0, 0, ErrInvalidRepeatBounds
		}
		return tok.Min, tok.Max, nil
	default:
		panic("quantifierBounds called on non-quantifier token")
	}
}

// parseAtom dispatches on the next token's kind: literal char, dot,
// anchors, shorthand classes, bracket class, group forms, or backref. A
// quantifier token encountered here (nothing precedes it to repeat) is a
// syntax error.
func (p *Parser) parseAtom() (ast.NodeID, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return ast.NilNode, p.wrap(tok.Pos, err)
	}

	switch tok.Kind {
	case lexer.TokChar:
		return p.tree.Add(ast.Node{Kind: ast.KindChar, Char: tok.Char}), nil
	case lexer.TokDot:
		return p.tree.Add(ast.Node{Kind: ast.KindAny}), nil
	case lexer.TokCaret:
		return p.tree.Add(ast.Node{Kind: ast.KindLineStart}), nil
	case lexer.TokDollar:
		return p.tree.Add(ast.Node{Kind: ast.KindLineEnd}), nil
	case lexer.TokWordBoundary:
		return p.tree.Add(ast.Node{Kind: ast.KindWordBoundary}), nil
	case lexer.TokNotWordBoundary:
		return p.tree.Add(ast.Node{Kind: ast.KindNotWordBoundary}), nil

	case lexer.TokDigit:
		return p.addShorthand(bitset.Digit(), false), nil
	case lexer.TokNotDigit:
		return p.addShorthand(bitset.Digit(), true), nil
	case lexer.TokWord:
		return p.addShorthand(bitset.Word(), false), nil
	case lexer.TokNotWord:
		return p.addShorthand(bitset.Word(), true), nil
	case lexer.TokSpace:
		return p.addShorthand(bitset.Space(), false), nil
	case lexer.TokNotSpace:
		return p.addShorthand(bitset.Space(), true), nil

	case lexer.TokBackref:
		if tok.RefIndex > p.captureCount {
			return ast.NilNode, p.err(tok.Pos, ErrBackrefOutOfRange)
		}
		return p.tree.Add(ast.Node{Kind: ast.KindBackref, Index: tok.RefIndex}), nil

	case lexer.TokLBracket:
		return p.parseClass()

	case lexer.TokLParen:
		return p.parseGroupBody(tok.Pos, ast.KindCapture, true)
	case lexer.TokNamedGroupStart:
		return p.parseGroupBody(tok.Pos, ast.KindCapture, true)
	case lexer.TokNonCapLParen:
		return p.parseGroupBody(tok.Pos, ast.KindGroup, false)
	case lexer.TokLookaheadStart:
		return p.parseGroupBody(tok.Pos, ast.KindLookahead, false)
	case lexer.TokNegLookahead:
		return p.parseGroupBody(tok.Pos, ast.KindNegLookahead, false)
	case lexer.TokLookbehindStart:
		return p.parseGroupBody(tok.Pos, ast.KindLookbehind, false)
	case lexer.TokNegLookbehind:
		return p.parseGroupBody(tok.Pos, ast.KindNegLookbehind, false)

	case lexer.TokRParen:
		return ast.NilNode, p.err(tok.Pos, ErrUnexpectedRParen)
	case lexer.TokStar, lexer.TokPlus, lexer.TokQuestion, lexer.TokRepeat:
		return ast.NilNode, p.err(tok.Pos, ErrDanglingQuantifier)
	case lexer.TokEOF:
		return ast.NilNode, p.err(tok.Pos, ErrUnmatchedParen)
	default:
		return ast.NilNode, p.err(tok.Pos, ErrDanglingQuantifier)
	}
}

// parseGroupBody parses "inner)" for any parenthesized construct: the
// opening token has already been consumed. Capturing groups get their
// index assigned before the body is parsed, so nested captures number in
// left-to-right order of their opening paren.
func (p *Parser) parseGroupBody(openPos int, kind ast.Kind, capturing bool) (ast.NodeID, error) {
	var index int
	if capturing {
		p.captureCount++
		if p.captureCount > maxCaptures {
			return ast.NilNode, p.err(openPos, ErrTooManyCaptures)
		}
		index = p.captureCount
	}

	inner, err := p.parseAlternation()
	if err != nil {
		return ast.NilNode, err
	}

	tok, err := p.lex.Next()
	if err != nil {
		return ast.NilNode, p.wrap(tok.Pos, err)
	}
	if tok.Kind != lexer.TokRParen {
		return ast.NilNode, p.err(openPos, ErrUnmatchedParen)
	}

	node := ast.Node{Kind: kind, Child: inner}
	if capturing {
		node.Index = index
	}
	return p.tree.Add(node), nil
}

// parseClass handles the bracket-expression body via lexer.Lexer.ScanClass,
// which owns the different escaping rules that apply inside "[...]".
func (p *Parser) parseClass() (ast.NodeID, error) {
	items, inverted, err := p.lex.ScanClass()
	if err != nil {
		return ast.NilNode, p.wrap(p.lex.Pos(), err)
	}

	var set bitset.CharSet
	for _, it := range items {
		switch it.Kind {
		case lexer.ClassItemChar:
			set.Set(it.Lo)
		case lexer.ClassItemRange:
			set.SetRange(it.Lo, it.Hi)
		case lexer.ClassItemShorthand:
			s := it.Set
			set.Union(&s)
		}
	}

	return p.tree.Add(ast.Node{Kind: ast.KindClass, Set: [32]byte(set), Inverted: inverted}), nil
}

// addShorthand expands a \d \D \w \W \s \S token into a bit-table class
// node at parse time, so codegen only ever sees uniform KindClass nodes
// (spec.md §4.2 design decision). Negation is carried as the Inverted
// flag rather than baked into the table, so the compiler can lower it to
// CHAR_CLASS_INV and reuse the same table either way.
func (p *Parser) addShorthand(set bitset.CharSet, negate bool) ast.NodeID {
	return p.tree.Add(ast.Node{Kind: ast.KindClass, Set: [32]byte(set), Inverted: negate})
}
