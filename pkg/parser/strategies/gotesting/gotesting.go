// Package gotesting discovers runnable Go tests and subtests at a cursor.
package gotesting

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser"
	"github.com/specvital/locator/pkg/parser/buildtags"
	"github.com/specvital/locator/pkg/parser/extraction"
	"github.com/specvital/locator/pkg/parser/strategies"
)

const (
	frameworkName = "go-test"

	// AST node types
	nodeArrayType                = "array_type"
	nodeCallExpression           = "call_expression"
	nodeCompositeLiteral         = "composite_literal"
	nodeElement                  = "element"
	nodeExpressionList           = "expression_list"
	nodeFieldDeclaration         = "field_declaration"
	nodeFieldDeclarationList     = "field_declaration_list"
	nodeFieldIdentifier          = "field_identifier"
	nodeForStatement             = "for_statement"
	nodeFuncLiteral              = "func_literal"
	nodeFunctionDeclaration      = "function_declaration"
	nodeIdentifier               = "identifier"
	nodeImplicitLengthArrayType  = "implicit_length_array_type"
	nodeKeyedElement             = "keyed_element"
	nodeLiteralElement           = "literal_element"
	nodeLiteralValue             = "literal_value"
	nodeParameterDeclaration     = "parameter_declaration"
	nodeParenthesizedExpression  = "parenthesized_expression"
	nodePointerType              = "pointer_type"
	nodeQualifiedType            = "qualified_type"
	nodeRangeClause              = "range_clause"
	nodeSelectorExpression       = "selector_expression"
	nodeShortVarDeclaration      = "short_var_declaration"
	nodeSliceType                = "slice_type"
	nodeStructType               = "struct_type"
	nodeTypeDeclaration          = "type_declaration"
	nodeTypeIdentifier           = "type_identifier"
	nodeTypeSpec                 = "type_spec"
	nodeUnaryExpression          = "unary_expression"
	nodeVarDeclaration           = "var_declaration"
	nodeVarSpec                  = "var_spec"
	nodeVariadicParameter        = "variadic_parameter_declaration"
	nodeInterpretedStringLiteral = "interpreted_string_literal"
	nodeRawStringLiteral         = "raw_string_literal"

	// Go test identifiers
	methodRun       = "Run"
	testNameMarker  = "Test"
	testFileSuffix  = "_test.go"
	testingImport   = "testing"
	typeString      = "string"
	typeTestContext = "T"
)

// Capability labels shown by front ends.
const (
	DescriptionNearest = "Test Nearest"
	DescriptionMethod  = "Test Function"
	DescriptionFile    = "Test File"
)

func init() {
	strategies.Register(NewStrategy())
}

// Strategy is the go test provider for the test-runner capability.
type Strategy struct {
	goBinary     string
	logger       *slog.Logger
	capabilities []domain.CapabilityDescriptor
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithGoBinary sets the executable used in generated commands.
func WithGoBinary(path string) Option {
	return func(s *Strategy) {
		if path != "" {
			s.goBinary = path
		}
	}
}

// WithLogger sets the logger for search events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Strategy) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStrategy creates the strategy with its capability table.
func NewStrategy(opts ...Option) *Strategy {
	s := &Strategy{
		goBinary: "go",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		capabilities: []domain.CapabilityDescriptor{
			{Capability: domain.CapabilityTestRunner, Mode: domain.SearchNearest, Description: DescriptionNearest},
			{Capability: domain.CapabilityTestRunner, Mode: domain.SearchMethod, Description: DescriptionMethod},
			{Capability: domain.CapabilityTestRunner, Mode: domain.SearchFile, Description: DescriptionFile},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Strategy) Name() string {
	return frameworkName
}

func (s *Strategy) Language() domain.Language {
	return domain.LanguageGo
}

func (s *Strategy) Capability() domain.Capability {
	return domain.CapabilityTestRunner
}

// Capabilities returns a copy of the descriptor table.
func (s *Strategy) Capabilities() []domain.CapabilityDescriptor {
	result := make([]domain.CapabilityDescriptor, len(s.capabilities))
	copy(result, s.capabilities)
	return result
}

// SearchModeFor maps a capability label to its search mode.
func (s *Strategy) SearchModeFor(description string) (domain.SearchMode, bool) {
	for _, c := range s.capabilities {
		if c.Description == description {
			return c.Mode, true
		}
	}
	return domain.SearchNearest, false
}

// Detect reports whether the target is a go test file: requested as a test
// runner, named *_test.go and importing "testing".
func (s *Strategy) Detect(ctx context.Context, target *domain.Target) bool {
	if target == nil || target.Capability != s.Capability() || !isGoTestFile(target.Buffer.Path) {
		return false
	}

	for _, imp := range extraction.ExtractGoImports(ctx, target.Buffer.Content) {
		if imp == testingImport {
			return true
		}
	}
	return false
}

// Runnables searches the target buffer according to its mode.
//
// File returns every test in the file, each replaced by its subtests when
// it has any. Method returns the test enclosing the cursor. Nearest returns
// the innermost subtests containing the cursor, or the enclosing test when
// no subtest does. Every runnable carries the file's build tags.
func (s *Strategy) Runnables(ctx context.Context, target *domain.Target) ([]domain.Runnable, error) {
	if err := s.checkTarget(target); err != nil {
		return nil, err
	}

	buf := target.Buffer
	tree, err := parser.ParseGo(ctx, buf.Content)
	if err != nil {
		return nil, fmt.Errorf("go-test: %s: %w", buf.Path, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	var runnables []domain.Runnable
	switch target.Mode {
	case domain.SearchFile:
		runnables = searchFile(root, buf)
	case domain.SearchMethod:
		runnables = searchMethod(root, buf)
	case domain.SearchNearest:
		runnables = searchNearest(root, buf)
	default:
		return nil, fmt.Errorf("%w: unsupported search mode %s", domain.ErrPrecondition, target.Mode)
	}

	if len(runnables) == 0 {
		return nil, fmt.Errorf("%w: %s at row %d (%s)", domain.ErrNotFound, buf.Path, buf.Position.Row, target.Mode)
	}

	tags := buildtags.Extract(root, buf.Content)
	pkg := extraction.GoPackageName(root, buf.Content)
	for i := range runnables {
		runnables[i].Meta.Go.Package = pkg
		runnables[i].Meta.Go.AppendBuildTags(tags...)
	}

	s.logger.Debug("runnables found",
		slog.String("path", buf.Path),
		slog.String("mode", target.Mode.String()),
		slog.Int("row", buf.Position.Row),
		slog.Int("count", len(runnables)),
	)

	return runnables, nil
}

func (s *Strategy) checkTarget(target *domain.Target) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", domain.ErrPrecondition)
	}
	if target.Capability != s.Capability() {
		return fmt.Errorf("%w: %s does not provide %q", domain.ErrPrecondition, frameworkName, target.Capability)
	}
	if !isGoTestFile(target.Buffer.Path) {
		return fmt.Errorf("%w: %s is not a %s file", domain.ErrPrecondition, target.Buffer.Path, testFileSuffix)
	}
	return nil
}

func searchFile(root *sitter.Node, buf domain.Buffer) []domain.Runnable {
	var runnables []domain.Runnable
	for _, fn := range findAll(root, buf.Content) {
		subtests := findSubtests(root, buf.Content, fn, -1)
		if len(subtests) == 0 {
			runnables = append(runnables, fn.runnable(buf.Path))
			continue
		}
		runnables = append(runnables, subtestRunnables(subtests, buf.Path)...)
	}
	return runnables
}

func searchMethod(root *sitter.Node, buf domain.Buffer) []domain.Runnable {
	fn, ok := findEnclosing(cursorScope(root, buf.Position), buf.Content, buf.Position.Row)
	if !ok {
		return nil
	}
	return []domain.Runnable{fn.runnable(buf.Path)}
}

func searchNearest(root *sitter.Node, buf domain.Buffer) []domain.Runnable {
	fn, ok := findEnclosing(cursorScope(root, buf.Position), buf.Content, buf.Position.Row)
	if !ok {
		return nil
	}
	if subtests := findSubtests(root, buf.Content, fn, buf.Position.Row); len(subtests) > 0 {
		return subtestRunnables(subtests, buf.Path)
	}
	return []domain.Runnable{fn.runnable(buf.Path)}
}

// cursorScope is the top-level declaration under the cursor. The whole file
// is used when the cursor sits past the end of a line and resolves to the
// following declaration.
func cursorScope(root *sitter.Node, pos domain.Position) *sitter.Node {
	scope := parser.SearchScope(parser.ResolveCursor(root, pos))
	if !parser.GetRange(scope).ContainsRow(pos.Row) {
		return root
	}
	return scope
}

func subtestRunnables(subtests []subtest, path string) []domain.Runnable {
	runnables := make([]domain.Runnable, 0, len(subtests))
	for _, st := range subtests {
		runnables = append(runnables, domain.Runnable{
			Name:  st.name,
			Path:  path,
			Range: st.rng,
			Meta:  domain.Metadata{Go: &domain.GoTestMetadata{}},
		})
	}
	return runnables
}

func isGoTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), testFileSuffix)
}
