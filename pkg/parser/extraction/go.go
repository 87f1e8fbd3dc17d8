// Package extraction pulls file-level facts out of Go sources with
// tree-sitter queries.
package extraction

import (
	"context"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser/tspool"
)

// Go import query: captures import path from both single and grouped imports.
// Matches import_spec directly to handle both:
// - Single: import "testing"
// - Grouped: import ( "fmt" \n "testing" )
const goImportQuery = `(import_spec path: (_) @import)`

const goPackageQuery = `(package_clause (package_identifier) @package)`

// ExtractGoImports parses content and returns its import paths in source
// order. Unparseable content yields nil.
func ExtractGoImports(ctx context.Context, content []byte) []string {
	tree, err := tspool.Parse(ctx, domain.LanguageGo, content)
	if err != nil {
		return nil
	}
	defer tree.Close()

	return GoImports(tree.RootNode(), content)
}

// GoImports returns the import paths declared under root.
func GoImports(root *sitter.Node, content []byte) []string {
	results, err := tspool.QueryWithCache(root, content, domain.LanguageGo, goImportQuery)
	if err != nil {
		return nil
	}

	var imports []string
	for _, r := range results {
		node := r.Captures["import"]
		if node == nil {
			continue
		}
		path := node.Content(content)
		if unquoted, err := strconv.Unquote(path); err == nil {
			path = unquoted
		}
		imports = append(imports, path)
	}
	return imports
}

// HasGoImport reports whether root imports path.
func HasGoImport(root *sitter.Node, content []byte, path string) bool {
	for _, imp := range GoImports(root, content) {
		if imp == path {
			return true
		}
	}
	return false
}

// GoPackageName returns the name in the package clause, or "".
func GoPackageName(root *sitter.Node, content []byte) string {
	results, err := tspool.QueryWithCache(root, content, domain.LanguageGo, goPackageQuery)
	if err != nil || len(results) == 0 {
		return ""
	}
	return results[0].Node.Content(content)
}
