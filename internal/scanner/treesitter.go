package scanner

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// findChildByKind finds the first child node with the given kind.
func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// findChildrenByKind finds all child nodes with the given kind.
func findChildrenByKind(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}
