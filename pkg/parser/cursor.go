package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/domain"
)

const nodeSourceFile = "source_file"

// ResolveCursor descends from root towards pos. At each level it enters the
// first named child whose span reaches or passes the cursor; when no child
// qualifies the current node is returned. Anonymous tokens such as the "\n"
// statement terminators are never entered.
func ResolveCursor(root *sitter.Node, pos domain.Position) *sitter.Node {
	point := sitter.Point{Row: uint32(max(pos.Row, 0)), Column: uint32(max(pos.Column, 0))}

	node := root
	for depth := 0; depth < MaxTreeDepth; depth++ {
		next := firstChildReaching(node, point)
		if next == nil {
			return node
		}
		node = next
	}
	return node
}

func firstChildReaching(node *sitter.Node, point sitter.Point) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if !pointBefore(child.EndPoint(), point) {
			return child
		}
	}
	return nil
}

func pointBefore(a, b sitter.Point) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Column < b.Column
}

// SearchScope returns the top-level declaration containing node, i.e. the
// ancestor whose parent is the source file. The root itself is returned
// unchanged, as is any node outside a source file.
func SearchScope(node *sitter.Node) *sitter.Node {
	current := node
	for depth := 0; depth < MaxTreeDepth; depth++ {
		if current.Type() == nodeSourceFile {
			return current
		}
		parent := current.Parent()
		if parent == nil {
			return current
		}
		if parent.Type() == nodeSourceFile {
			return current
		}
		current = parent
	}
	return current
}
