package parser

import (
	"context"
	"fmt"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser/tspool"
)

const MaxTreeDepth = tspool.MaxTreeDepth

// QueryResult contains the result of a tree-sitter query match.
type QueryResult = tspool.QueryResult

// ParseGo parses Go source into a syntax tree.
// Syntax errors in the source still produce a best-effort tree; only a missing
// tree is reported, wrapped as [domain.ErrParsing].
// Caller must close the returned tree.
func ParseGo(ctx context.Context, source []byte) (*sitter.Tree, error) {
	tree, err := tspool.Parse(ctx, domain.LanguageGo, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParsing, err)
	}
	return tree, nil
}

// QueryWithCache executes a query with cached compilation.
func QueryWithCache(root *sitter.Node, source []byte, lang domain.Language, queryStr string) ([]QueryResult, error) {
	return tspool.QueryWithCache(root, source, lang, queryStr)
}

// GetNodeText returns the source text for the given AST node.
// Returns empty string if the node's byte range exceeds the source length.
func GetNodeText(node *sitter.Node, source []byte) (result string) {
	if node == nil {
		return ""
	}

	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	// Validate bounds before calling tree-sitter C code
	if start > sourceLen || end > sourceLen || start > end {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// GetRange converts a tree-sitter node span to a zero-indexed [domain.Range].
func GetRange(node *sitter.Node) domain.Range {
	start := node.StartPoint()
	end := node.EndPoint()

	return domain.Range{
		Start: domain.Position{Row: int(start.Row), Column: int(start.Column)},
		End:   domain.Position{Row: int(end.Row), Column: int(end.Column)},
	}
}

// FindChildByType returns the first direct child with the given node type.
func FindChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// FindChildrenByType returns all direct children with the given node type.
func FindChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var children []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == nodeType {
			children = append(children, child)
		}
	}
	return children
}

// NamedChildren returns all named direct children, skipping comments.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	var children []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// FindAncestor returns the closest ancestor of node (excluding node) with the
// given type, or nil.
func FindAncestor(node *sitter.Node, nodeType string) *sitter.Node {
	depth := 0
	for n := node.Parent(); n != nil && depth <= MaxTreeDepth; n = n.Parent() {
		if n.Type() == nodeType {
			return n
		}
		depth++
	}
	return nil
}

// Unquote strips the quotes of a Go string literal.
func Unquote(s string) string {
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	// Fallback for invalid literals, e.g. from incomplete code.
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

func walkTreeWithDepth(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if node == nil || depth > tspool.MaxTreeDepth {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTreeWithDepth(node.Child(i), visitor, depth+1)
	}
}

// WalkTree recursively visits all nodes in the AST.
// The visitor function returns false to stop traversing into children.
func WalkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkTreeWithDepth(node, visitor, 0)
}
