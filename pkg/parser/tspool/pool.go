// Package tspool provides tree-sitter parsers and compiled queries.
//
// Parsers are created fresh for every parse. When a context is cancelled
// during ParseCtx the parser's internal cancel flag is set but not reset,
// causing later parses on the same parser to fail with "operation limit was
// hit", so parsers are never reused.
//
// Thread-safety: Parsers returned by Get are NOT safe for concurrent use.
// Each goroutine must Get its own parser or use the Parse helper.
package tspool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/specvital/locator/pkg/domain"
)

// MaxTreeDepth is the maximum recursion depth when walking AST trees.
const MaxTreeDepth = 1000

// ErrNoTree is returned when tree-sitter produces no tree at all.
var ErrNoTree = errors.New("tree-sitter returned no tree")

var (
	goLang *sitter.Language
	pyLang *sitter.Language
	rsLang *sitter.Language

	langOnce sync.Once
)

func initLanguages() {
	langOnce.Do(func() {
		goLang = golang.GetLanguage()
		pyLang = python.GetLanguage()
		rsLang = rust.GetLanguage()
	})
}

// GetLanguage returns the tree-sitter language for the given domain language,
// or nil if the language has no grammar.
func GetLanguage(lang domain.Language) *sitter.Language {
	initLanguages()
	switch lang {
	case domain.LanguageGo:
		return goLang
	case domain.LanguagePython:
		return pyLang
	case domain.LanguageRust:
		return rsLang
	default:
		return nil
	}
}

// Get returns a parser for the given language.
// The returned parser is NOT safe for concurrent use.
// Caller MUST call parser.Close() when done to free resources.
func Get(lang domain.Language) *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(GetLanguage(lang))
	return parser
}

// Parse parses source using a fresh parser.
// Caller MUST call tree.Close() to free resources.
func Parse(ctx context.Context, lang domain.Language, source []byte) (*sitter.Tree, error) {
	if GetLanguage(lang) == nil {
		return nil, fmt.Errorf("parse %s failed: no grammar", lang)
	}

	parser := Get(lang)
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", lang, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s failed: %w", lang, ErrNoTree)
	}

	return tree, nil
}
