package gotesting

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser"
)

// testFunc is a top-level function recognized as a Go test.
type testFunc struct {
	name string
	decl *sitter.Node
	body *sitter.Node
}

func (f testFunc) runnable(path string) domain.Runnable {
	return domain.Runnable{
		Name:  f.name,
		Path:  path,
		Range: parser.GetRange(f.decl),
		Meta:  domain.Metadata{Go: &domain.GoTestMetadata{}},
	}
}

// findEnclosing returns the first test function under root whose
// declaration spans row.
func findEnclosing(root *sitter.Node, source []byte, row int) (testFunc, bool) {
	var (
		found testFunc
		ok    bool
	)

	parser.WalkTree(root, func(node *sitter.Node) bool {
		if ok {
			return false
		}
		if node.Type() != nodeFunctionDeclaration {
			return true
		}
		if fn, isTest := asTestFunc(node, source); isTest && parser.GetRange(node).ContainsRow(row) {
			found, ok = fn, true
		}
		return false
	})

	return found, ok
}

// findAll returns every test function under root in source order.
func findAll(root *sitter.Node, source []byte) []testFunc {
	var funcs []testFunc

	parser.WalkTree(root, func(node *sitter.Node) bool {
		if node.Type() != nodeFunctionDeclaration {
			return true
		}
		if fn, isTest := asTestFunc(node, source); isTest {
			funcs = append(funcs, fn)
		}
		return false
	})

	return funcs
}

func asTestFunc(decl *sitter.Node, source []byte) (testFunc, bool) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return testFunc{}, false
	}

	name := parser.GetNodeText(nameNode, source)
	if !isTestName(name) || !hasSingleTestParam(decl.ChildByFieldName("parameters"), source) {
		return testFunc{}, false
	}

	return testFunc{
		name: name,
		decl: decl,
		body: decl.ChildByFieldName("body"),
	}, true
}

func isTestName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r) && strings.Contains(name, testNameMarker)
}

// hasSingleTestParam reports whether params declares exactly one parameter
// of type *<pkg>.T.
func hasSingleTestParam(params *sitter.Node, source []byte) bool {
	if params == nil {
		return false
	}

	decls := parser.FindChildrenByType(params, nodeParameterDeclaration)
	if len(decls) != 1 || len(parser.FindChildrenByType(params, nodeVariadicParameter)) > 0 {
		return false
	}
	if len(parser.FindChildrenByType(decls[0], nodeIdentifier)) > 1 {
		return false
	}

	return isTestContextType(decls[0].ChildByFieldName("type"), source)
}

// isTestContextType matches *pkg.T regardless of the package alias.
func isTestContextType(typeNode *sitter.Node, source []byte) bool {
	if typeNode == nil || typeNode.Type() != nodePointerType {
		return false
	}

	qualified := parser.FindChildByType(typeNode, nodeQualifiedType)
	if qualified == nil {
		return false
	}

	if name := qualified.ChildByFieldName("name"); name != nil {
		return parser.GetNodeText(name, source) == typeTestContext
	}

	text := parser.GetNodeText(qualified, source)
	return text[strings.LastIndex(text, ".")+1:] == typeTestContext
}

// funcLiteralTakesT reports whether fn is a func literal with a single
// *pkg.T parameter.
func funcLiteralTakesT(fn *sitter.Node, source []byte) bool {
	if fn == nil || fn.Type() != nodeFuncLiteral {
		return false
	}
	return hasSingleTestParam(fn.ChildByFieldName("parameters"), source)
}
