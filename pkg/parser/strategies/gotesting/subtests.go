package gotesting

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser"
)

// subtest is a resolved t.Run invocation or table case.
type subtest struct {
	name string
	rng  domain.Range
}

// subtestCase is what a matcher reports: the case name segment and the node
// whose span locates it.
type subtestCase struct {
	name string
	node *sitter.Node
}

// runCall is a call of the form x.Run(name, fn).
type runCall struct {
	call    *sitter.Node
	nameArg *sitter.Node
	fn      *sitter.Node
}

// subtestMatcher recognizes one subtest idiom at a Run call.
type subtestMatcher func(sc *searchContext, call runCall) []subtestCase

// subtestMatchers are mutually exclusive: at most one reports cases for a
// given call.
var subtestMatchers = []subtestMatcher{
	matchStringLiteral,
	matchInlineKeyed,
	matchInlinePositional,
	matchPredefinedPositional,
	matchPredefinedKeyed,
	matchVarKeyed,
	matchVarPositional,
}

// searchContext holds what matchers need beyond the call itself.
type searchContext struct {
	root   *sitter.Node
	source []byte
	fn     testFunc
	tables map[uint32]*caseTable
}

func newSearchContext(root *sitter.Node, source []byte, fn testFunc) *searchContext {
	return &searchContext{
		root:   root,
		source: source,
		fn:     fn,
		tables: make(map[uint32]*caseTable),
	}
}

func (sc *searchContext) match(call runCall) []subtestCase {
	var cases []subtestCase
	for _, m := range subtestMatchers {
		cases = append(cases, m(sc, call)...)
	}
	return cases
}

// findSubtests returns the subtests of fn in source order, named below
// fn.name. Nested Run calls are named below their enclosing subtest. When
// row is non-negative only the innermost subtests whose range contains row
// are kept. Returns nil when nothing matches.
func findSubtests(root *sitter.Node, source []byte, fn testFunc, row int) []subtest {
	if fn.body == nil {
		return nil
	}

	c := &subtestCollector{
		sc:   newSearchContext(root, source, fn),
		seen: make(map[string]int),
	}
	c.visit(fn.body, []string{fn.name}, 0)

	if row < 0 || len(c.out) == 0 {
		return c.out
	}
	return innermost(c.out, row)
}

type subtestCollector struct {
	sc   *searchContext
	seen map[string]int
	out  []subtest
}

func (c *subtestCollector) visit(node *sitter.Node, parents []string, depth int) {
	if node == nil || depth > parser.MaxTreeDepth {
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}

		call, ok := parseRunCall(child, c.sc.source)
		if !ok {
			c.visit(child, parents, depth+1)
			continue
		}

		cases := c.sc.match(call)
		if len(cases) == 0 {
			// The name is not statically known, so neither are the names below it.
			continue
		}

		var names []string
		for _, parent := range parents {
			for _, tc := range cases {
				name := c.unique(parent + "/" + tc.name)
				c.out = append(c.out, subtest{name: name, rng: parser.GetRange(tc.node)})
				names = append(names, name)
			}
		}

		if call.fn != nil && call.fn.Type() == nodeFuncLiteral {
			c.visit(call.fn.ChildByFieldName("body"), names, depth+1)
		}
	}
}

// unique applies the suffix go test gives repeated subtest names.
func (c *subtestCollector) unique(name string) string {
	n := c.seen[name]
	c.seen[name] = n + 1
	if n == 0 {
		return name
	}

	for {
		candidate := fmt.Sprintf("%s#%02d", name, n)
		if c.seen[candidate] == 0 {
			c.seen[candidate] = 1
			return candidate
		}
		n++
	}
}

// innermost keeps the subtests containing row that have no descendant
// containing row.
func innermost(subtests []subtest, row int) []subtest {
	var hits []subtest
	for _, s := range subtests {
		if s.rng.ContainsRow(row) {
			hits = append(hits, s)
		}
	}

	var result []subtest
	for _, s := range hits {
		parent := domain.Runnable{Name: s.name}
		hasChild := false
		for _, other := range hits {
			if parent.IsAncestorOf(domain.Runnable{Name: other.name}) {
				hasChild = true
				break
			}
		}
		if !hasChild {
			result = append(result, s)
		}
	}
	return result
}

// parseRunCall recognizes x.Run(name, fn). A func literal argument must take
// a single *pkg.T.
func parseRunCall(node *sitter.Node, source []byte) (runCall, bool) {
	if node.Type() != nodeCallExpression {
		return runCall{}, false
	}

	funcNode := node.ChildByFieldName("function")
	if funcNode == nil || funcNode.Type() != nodeSelectorExpression {
		return runCall{}, false
	}

	field := funcNode.ChildByFieldName("field")
	if field == nil || parser.GetNodeText(field, source) != methodRun {
		return runCall{}, false
	}

	args := parser.NamedChildren(node.ChildByFieldName("arguments"))
	if len(args) != 2 {
		return runCall{}, false
	}

	if args[1].Type() == nodeFuncLiteral && !funcLiteralTakesT(args[1], source) {
		return runCall{}, false
	}

	return runCall{call: node, nameArg: args[0], fn: args[1]}, true
}

// matchStringLiteral recognizes t.Run("name", func(t *testing.T) {...}).
func matchStringLiteral(sc *searchContext, call runCall) []subtestCase {
	if !isStringLiteral(call.nameArg) {
		return nil
	}
	return []subtestCase{{
		name: parser.Unquote(parser.GetNodeText(call.nameArg, sc.source)),
		node: call.call,
	}}
}

func isStringLiteral(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case nodeInterpretedStringLiteral, nodeRawStringLiteral:
		return true
	}
	return false
}
