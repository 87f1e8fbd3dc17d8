package gotesting

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/parser"
)

// caseTable is the slice of test cases feeding a t.Run(tc.field, ...) call
// inside a range loop.
type caseTable struct {
	// field is the struct field passed as the subtest name.
	field string
	// fieldIndex is the position of field among the struct's fields.
	fieldIndex int
	// literal is the composite literal holding the cases.
	literal *sitter.Node
	// predefined is set when the element type is a named struct type.
	predefined bool
	// inLoop is set when the literal is written in the range clause itself.
	inLoop bool
}

type structField struct {
	name string
	typ  string
}

func matchInlineKeyed(sc *searchContext, call runCall) []subtestCase {
	table := sc.table(call)
	if table == nil || !table.inLoop || table.predefined {
		return nil
	}
	return table.keyedCases(sc.source)
}

func matchInlinePositional(sc *searchContext, call runCall) []subtestCase {
	table := sc.table(call)
	if table == nil || !table.inLoop || table.predefined {
		return nil
	}
	return table.positionalCases(sc.source)
}

func matchPredefinedPositional(sc *searchContext, call runCall) []subtestCase {
	table := sc.table(call)
	if table == nil || !table.inLoop || !table.predefined {
		return nil
	}
	return table.positionalCases(sc.source)
}

func matchPredefinedKeyed(sc *searchContext, call runCall) []subtestCase {
	table := sc.table(call)
	if table == nil || !table.inLoop || !table.predefined {
		return nil
	}
	return table.keyedCases(sc.source)
}

func matchVarKeyed(sc *searchContext, call runCall) []subtestCase {
	table := sc.table(call)
	if table == nil || table.inLoop {
		return nil
	}
	return table.keyedCases(sc.source)
}

func matchVarPositional(sc *searchContext, call runCall) []subtestCase {
	table := sc.table(call)
	if table == nil || table.inLoop {
		return nil
	}
	return table.positionalCases(sc.source)
}

// table resolves and memoizes the case table of call, or nil when the call
// does not name its subtest after a string field of a range loop variable.
func (sc *searchContext) table(call runCall) *caseTable {
	key := call.call.StartByte()
	if table, ok := sc.tables[key]; ok {
		return table
	}
	table := sc.resolveTable(call)
	sc.tables[key] = table
	return table
}

func (sc *searchContext) resolveTable(call runCall) *caseTable {
	if call.nameArg.Type() != nodeSelectorExpression {
		return nil
	}
	operand := call.nameArg.ChildByFieldName("operand")
	field := call.nameArg.ChildByFieldName("field")
	if operand == nil || field == nil || operand.Type() != nodeIdentifier {
		return nil
	}

	loopVar := parser.GetNodeText(operand, sc.source)
	loop, rangeClause := sc.enclosingRangeLoop(call.call, loopVar)
	if loop == nil {
		return nil
	}

	table := &caseTable{field: parser.GetNodeText(field, sc.source)}

	rangeExpr := unwrapParens(rangeClause.ChildByFieldName("right"))
	switch {
	case rangeExpr == nil:
		return nil
	case rangeExpr.Type() == nodeCompositeLiteral:
		table.literal = rangeExpr
		table.inLoop = true
	case rangeExpr.Type() == nodeIdentifier:
		table.literal = sc.lookupTableVar(parser.GetNodeText(rangeExpr, sc.source), loop.StartByte())
	}
	if table.literal == nil {
		return nil
	}

	structType, predefined := sc.elementStruct(table.literal.ChildByFieldName("type"))
	if structType == nil {
		return nil
	}
	table.predefined = predefined

	table.fieldIndex = -1
	for i, f := range structFields(structType, sc.source) {
		if f.name == table.field {
			if f.typ != typeString {
				return nil
			}
			table.fieldIndex = i
			break
		}
	}
	if table.fieldIndex < 0 {
		return nil
	}

	return table
}

// enclosingRangeLoop returns the innermost for-range statement around node,
// within the test function, whose last iteration variable is loopVar.
func (sc *searchContext) enclosingRangeLoop(node *sitter.Node, loopVar string) (*sitter.Node, *sitter.Node) {
	depth := 0
	for n := node.Parent(); n != nil && depth <= parser.MaxTreeDepth; n = n.Parent() {
		depth++
		if n.Type() == nodeFunctionDeclaration {
			return nil, nil
		}
		if n.Type() != nodeForStatement {
			continue
		}
		rangeClause := parser.FindChildByType(n, nodeRangeClause)
		if rangeClause == nil {
			continue
		}
		if lastIdentifier(rangeClause.ChildByFieldName("left"), sc.source) == loopVar {
			return n, rangeClause
		}
	}
	return nil, nil
}

func lastIdentifier(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Type() == nodeIdentifier {
		return parser.GetNodeText(node, source)
	}
	ids := parser.FindChildrenByType(node, nodeIdentifier)
	if len(ids) == 0 {
		return ""
	}
	return parser.GetNodeText(ids[len(ids)-1], source)
}

// lookupTableVar finds the composite literal assigned to name by the last
// declaration before offset in the test body, falling back to package-level
// var declarations.
func (sc *searchContext) lookupTableVar(name string, offset uint32) *sitter.Node {
	var found *sitter.Node

	parser.WalkTree(sc.fn.body, func(node *sitter.Node) bool {
		if node.StartByte() >= offset {
			return false
		}
		switch node.Type() {
		case nodeShortVarDeclaration:
			if lit := assignedLiteral(node.ChildByFieldName("left"), node.ChildByFieldName("right"), name, sc.source); lit != nil {
				found = lit
			}
			return false
		case nodeVarSpec:
			if lit := assignedLiteral(node, node.ChildByFieldName("value"), name, sc.source); lit != nil {
				found = lit
			}
			return false
		}
		return true
	})
	if found != nil {
		return found
	}

	for _, decl := range parser.FindChildrenByType(sc.root, nodeVarDeclaration) {
		parser.WalkTree(decl, func(node *sitter.Node) bool {
			if node.Type() != nodeVarSpec {
				return true
			}
			if lit := assignedLiteral(node, node.ChildByFieldName("value"), name, sc.source); lit != nil {
				found = lit
			}
			return false
		})
	}
	return found
}

// assignedLiteral returns the composite literal assigned to name, pairing
// the identifiers directly under names with the expressions in values.
func assignedLiteral(names, values *sitter.Node, name string, source []byte) *sitter.Node {
	if names == nil || values == nil {
		return nil
	}

	var ids []*sitter.Node
	if names.Type() == nodeIdentifier {
		ids = []*sitter.Node{names}
	} else {
		ids = parser.FindChildrenByType(names, nodeIdentifier)
	}

	exprs := []*sitter.Node{values}
	if values.Type() == nodeExpressionList {
		exprs = parser.NamedChildren(values)
	}

	for i, id := range ids {
		if parser.GetNodeText(id, source) != name || i >= len(exprs) {
			continue
		}
		if expr := unwrapParens(exprs[i]); expr != nil && expr.Type() == nodeCompositeLiteral {
			return expr
		}
	}
	return nil
}

// elementStruct returns the struct type of a slice or array type's elements
// and whether it was reached through a type name.
func (sc *searchContext) elementStruct(listType *sitter.Node) (*sitter.Node, bool) {
	if listType == nil {
		return nil, false
	}
	switch listType.Type() {
	case nodeSliceType, nodeArrayType, nodeImplicitLengthArrayType:
	default:
		return nil, false
	}

	elem := listType.ChildByFieldName("element")
	if elem != nil && elem.Type() == nodePointerType {
		if inner := parser.NamedChildren(elem); len(inner) > 0 {
			elem = inner[0]
		}
	}
	if elem == nil {
		return nil, false
	}

	switch elem.Type() {
	case nodeStructType:
		return elem, false
	case nodeTypeIdentifier:
		return sc.lookupStructType(parser.GetNodeText(elem, sc.source)), true
	}
	return nil, false
}

// lookupStructType finds a struct type declared as name, first inside the
// test function, then at package level.
func (sc *searchContext) lookupStructType(name string) *sitter.Node {
	if st := findStructSpec(sc.fn.body, name, sc.source); st != nil {
		return st
	}
	for _, decl := range parser.FindChildrenByType(sc.root, nodeTypeDeclaration) {
		if st := findStructSpec(decl, name, sc.source); st != nil {
			return st
		}
	}
	return nil
}

func findStructSpec(scope *sitter.Node, name string, source []byte) *sitter.Node {
	var found *sitter.Node
	parser.WalkTree(scope, func(node *sitter.Node) bool {
		if found != nil {
			return false
		}
		if node.Type() != nodeTypeSpec {
			return true
		}
		specName := node.ChildByFieldName("name")
		specType := node.ChildByFieldName("type")
		if specName != nil && specType != nil && specType.Type() == nodeStructType &&
			parser.GetNodeText(specName, source) == name {
			found = specType
		}
		return false
	})
	return found
}

// structFields lists the fields of a struct type in declaration order,
// one entry per declared name. Embedded fields are named after their type.
func structFields(structType *sitter.Node, source []byte) []structField {
	list := parser.FindChildByType(structType, nodeFieldDeclarationList)
	if list == nil {
		return nil
	}

	var fields []structField
	for _, decl := range parser.FindChildrenByType(list, nodeFieldDeclaration) {
		typeNode := decl.ChildByFieldName("type")
		typ := parser.GetNodeText(typeNode, source)

		names := parser.FindChildrenByType(decl, nodeFieldIdentifier)
		if len(names) == 0 {
			embedded := strings.TrimPrefix(typ, "*")
			fields = append(fields, structField{name: embedded[strings.LastIndex(embedded, ".")+1:], typ: typ})
			continue
		}
		for _, n := range names {
			fields = append(fields, structField{name: parser.GetNodeText(n, source), typ: typ})
		}
	}
	return fields
}

// keyedCases names each case written with field keys by the value of the
// naming field.
func (t *caseTable) keyedCases(source []byte) []subtestCase {
	var cases []subtestCase
	t.eachCase(func(element, body *sitter.Node) {
		elements := parser.NamedChildren(body)
		if !isKeyed(elements) {
			return
		}
		for _, kv := range elements {
			if kv.Type() != nodeKeyedElement {
				continue
			}
			parts := parser.NamedChildren(kv)
			if len(parts) < 2 {
				continue
			}
			if parser.GetNodeText(unwrapElement(parts[0]), source) != t.field {
				continue
			}
			if value := unwrapElement(parts[len(parts)-1]); isStringLiteral(value) {
				cases = append(cases, subtestCase{
					name: parser.Unquote(parser.GetNodeText(value, source)),
					node: element,
				})
			}
			return
		}
	})
	return cases
}

// positionalCases names each case written without keys by the value at the
// naming field's position.
func (t *caseTable) positionalCases(source []byte) []subtestCase {
	var cases []subtestCase
	t.eachCase(func(element, body *sitter.Node) {
		elements := parser.NamedChildren(body)
		if len(elements) == 0 || isKeyed(elements) || t.fieldIndex >= len(elements) {
			return
		}
		if value := unwrapElement(elements[t.fieldIndex]); isStringLiteral(value) {
			cases = append(cases, subtestCase{
				name: parser.Unquote(parser.GetNodeText(value, source)),
				node: element,
			})
		}
	})
	return cases
}

// eachCase calls fn with each element of the table literal and the
// literal_value holding that case's fields.
func (t *caseTable) eachCase(fn func(element, body *sitter.Node)) {
	for _, element := range parser.NamedChildren(t.literal.ChildByFieldName("body")) {
		value := element
		if value.Type() == nodeKeyedElement {
			parts := parser.NamedChildren(value)
			if len(parts) == 0 {
				continue
			}
			value = parts[len(parts)-1]
		}
		if body := caseBody(unwrapElement(value)); body != nil {
			fn(element, body)
		}
	}
}

// caseBody returns the literal_value of {..}, T{..} or &T{..}.
func caseBody(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case nodeLiteralValue:
		return node
	case nodeCompositeLiteral:
		return node.ChildByFieldName("body")
	case nodeUnaryExpression:
		return caseBody(node.ChildByFieldName("operand"))
	}
	return nil
}

func isKeyed(elements []*sitter.Node) bool {
	for _, e := range elements {
		if e.Type() == nodeKeyedElement {
			return true
		}
	}
	return false
}

// unwrapElement returns the expression wrapped by a literal_element.
func unwrapElement(node *sitter.Node) *sitter.Node {
	for node != nil && (node.Type() == nodeLiteralElement || node.Type() == nodeElement) {
		children := parser.NamedChildren(node)
		if len(children) == 0 {
			return nil
		}
		node = children[0]
	}
	return node
}

func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == nodeParenthesizedExpression {
		children := parser.NamedChildren(node)
		if len(children) == 0 {
			return nil
		}
		node = children[0]
	}
	return node
}
