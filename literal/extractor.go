package literal

import "github.com/vmrex/vmrex/ast"

// maxAlternatives bounds how many branches a top-level alternation may
// have before extraction gives up: beyond this it stops being cheaper
// than just running the VM, and guards against pathological patterns.
const maxAlternatives = 64

// Build walks tree and returns a Prefilter the facade can run ahead of
// the VM, or nil if no useful literal structure was found (the tree
// starts with a wildcard, a class of more than one byte, an anchor-only
// pattern, etc).
// Build extracts a Prefilter from tree, or nil if no required literal
// structure exists. caseInsensitive must match the CaseInsensitive
// compiler option the same tree is lowered with, so the extracted
// literal(s) are matched the same way the VM would match them.
func Build(tree *ast.Tree, caseInsensitive bool) Prefilter {
	if prefix := requiredPrefix(tree, tree.Root); len(prefix) > 0 {
		return newLiteralPrefilter(prefix, caseInsensitive)
	}

	if alts := literalAlternatives(tree, tree.Root); len(alts) >= 2 {
		seq := NewSeq(alts...)
		seq.Minimize()
		return newAlternationPrefilter(seq, caseInsensitive)
	}

	return nil
}

// requiredPrefix returns the longest literal byte run every match of
// tree must start with, walking through concatenation, non-capturing
// groups, and capturing groups (all transparent to a leading literal),
// taking the common prefix of an alternation's branches, and stopping at
// the first node that isn't a single fixed byte.
func requiredPrefix(tree *ast.Tree, id ast.NodeID) []byte {
	id, ok := descendTransparent(tree, id)
	if !ok {
		return nil
	}
	n := tree.Get(id)

	switch n.Kind {
	case ast.KindChar:
		return []byte{n.Char}
	case ast.KindConcat:
		var out []byte
		for _, child := range n.Children {
			if b, full := fullyLiteral(tree, child); full {
				out = append(out, b...)
				continue
			}
			// child isn't entirely deterministic, but may still have a
			// deterministic prefix of its own (e.g. a nested concat that
			// itself runs out partway); take that much and stop, since
			// whatever comes after it in the match is no longer certain.
			out = append(out, requiredPrefix(tree, child)...)
			break
		}
		return out
	case ast.KindAlt:
		var common []byte
		for i, branch := range n.Children {
			b := requiredPrefix(tree, branch)
			if i == 0 {
				common = b
				continue
			}
			k := 0
			for k < len(common) && k < len(b) && common[k] == b[k] {
				k++
			}
			common = common[:k]
		}
		return common
	default:
		return nil
	}
}

// descendTransparent unwraps KindGroup/KindCapture wrappers that don't
// affect what literal bytes a match begins with.
func descendTransparent(tree *ast.Tree, id ast.NodeID) (ast.NodeID, bool) {
	for {
		n := tree.Get(id)
		switch n.Kind {
		case ast.KindGroup, ast.KindCapture:
			id = n.Child
		default:
			return id, true
		}
	}
}

// literalAlternatives returns one Literal per branch of a top-level
// alternation, provided every branch is itself a fixed literal run with
// no wildcards — the shape "cat|dog|bird" produces ["cat","dog","bird"];
// a branch containing anything else (a class, a quantifier, a dot)
// disqualifies the whole extraction, since Aho-Corasick can only ever
// report candidate starts, not verify the rest of the pattern.
func literalAlternatives(tree *ast.Tree, id ast.NodeID) []Literal {
	id, _ = descendTransparent(tree, id)
	n := tree.Get(id)
	if n.Kind != ast.KindAlt || len(n.Children) > maxAlternatives {
		return nil
	}

	lits := make([]Literal, 0, len(n.Children))
	for _, branch := range n.Children {
		b, ok := fullyLiteral(tree, branch)
		if !ok || len(b) == 0 {
			return nil
		}
		lits = append(lits, Literal{Bytes: b})
	}
	return lits
}

// fullyLiteral reports whether id is, in its entirety, a fixed sequence
// of literal bytes (no classes, quantifiers, anchors, or alternation),
// and returns that sequence.
func fullyLiteral(tree *ast.Tree, id ast.NodeID) ([]byte, bool) {
	id, _ = descendTransparent(tree, id)
	n := tree.Get(id)
	switch n.Kind {
	case ast.KindChar:
		return []byte{n.Char}, true
	case ast.KindConcat:
		var out []byte
		for _, child := range n.Children {
			b, ok := fullyLiteral(tree, child)
			if !ok {
				return nil, false
			}
			out = append(out, b...)
		}
		return out, true
	case ast.KindEmpty:
		return nil, true
	default:
		return nil, false
	}
}
