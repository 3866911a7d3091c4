package compiler

import "github.com/vmrex/vmrex/ast"

// reverseForLookbehind mirrors a lookbehind's child subtree so the VM can
// match it against the reversed bytes preceding the current position
// (see vm.PikeVM.runLookaround): concatenation order is what matching
// direction actually depends on, so only KindConcat children get
// reordered; everything else is order-independent at this level (a
// single byte, a class, a whole alternative branch) or just needs its own
// child reversed in turn.
func reverseForLookbehind(tree *ast.Tree, id ast.NodeID) ast.NodeID {
	n := tree.Get(id)
	switch n.Kind {
	case ast.KindConcat:
		children := make([]ast.NodeID, len(n.Children))
		for i, c := range n.Children {
			children[len(n.Children)-1-i] = reverseForLookbehind(tree, c)
		}
		return tree.Add(ast.Node{Kind: ast.KindConcat, Children: children})

	case ast.KindCapture, ast.KindGroup:
		cp := *n
		cp.Child = reverseForLookbehind(tree, n.Child)
		return tree.Add(cp)

	case ast.KindRepeat:
		cp := *n
		cp.Child = reverseForLookbehind(tree, n.Child)
		return tree.Add(cp)

	case ast.KindAlt:
		children := make([]ast.NodeID, len(n.Children))
		for i, c := range n.Children {
			children[i] = reverseForLookbehind(tree, c)
		}
		cp := *n
		cp.Children = children
		return tree.Add(cp)

	default:
		return id
	}
}
