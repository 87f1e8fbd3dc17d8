package tspool_test

import (
	"context"
	"sync"
	"testing"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser/tspool"
)

func TestParse_RaceFree(t *testing.T) {
	t.Parallel()

	const goroutines = 50
	source := []byte("package main\nfunc TestX(t *testing.T) {}\n")

	var wg sync.WaitGroup
	wg.Add(goroutines)

	errCh := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			tree, err := tspool.Parse(context.Background(), domain.LanguageGo, source)
			if err != nil {
				errCh <- err
				return
			}
			defer tree.Close()
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("Parse failed: %v", err)
	}
}

func TestParse_ContextCancellation(t *testing.T) {
	t.Parallel()

	// Note: tree-sitter's ParseCtx may not honor context cancellation for small inputs.
	// This test verifies the context is passed through, not that parsing fails.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree, err := tspool.Parse(ctx, domain.LanguageGo, []byte("package main"))

	// Either error or success is acceptable - tree-sitter behavior varies
	if err == nil && tree != nil {
		tree.Close()
	}
}

func TestGetLanguage_ReturnsCorrectLanguages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lang domain.Language
	}{
		{"Go", domain.LanguageGo},
		{"Python", domain.LanguagePython},
		{"Rust", domain.LanguageRust},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lang := tspool.GetLanguage(tt.lang)
			if lang == nil {
				t.Errorf("GetLanguage(%v) returned nil", tt.lang)
			}
		})
	}
}

func TestParse_UnknownLanguage(t *testing.T) {
	t.Parallel()

	if _, err := tspool.Parse(context.Background(), domain.Language("cobol"), []byte("x")); err == nil {
		t.Error("expected error for language without grammar")
	}
}

func TestParse_InvalidGoStillProducesTree(t *testing.T) {
	t.Parallel()

	tree, err := tspool.Parse(context.Background(), domain.LanguageGo, []byte("package main\nfunc TestX(t *testing.T) {\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	if !tree.RootNode().HasError() {
		t.Error("expected error nodes in best-effort tree")
	}
}

func TestQueryWithCache(t *testing.T) {
	t.Parallel()

	source := []byte("package main\n\nimport (\n\t\"fmt\"\n\t\"testing\"\n)\n")
	tree, err := tspool.Parse(context.Background(), domain.LanguageGo, source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	const q = `(import_spec path: (interpreted_string_literal) @import (#eq? @import "\"testing\""))`

	for i := 0; i < 2; i++ {
		results, err := tspool.QueryWithCache(tree.RootNode(), source, domain.LanguageGo, q)
		if err != nil {
			t.Fatalf("QueryWithCache failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 match, got %d", len(results))
		}
		if got := results[0].Captures["import"].Content(source); got != `"testing"` {
			t.Errorf("capture = %s, want \"testing\"", got)
		}
	}
}

func TestQueryWithCache_InvalidQuery(t *testing.T) {
	t.Parallel()

	tree, err := tspool.Parse(context.Background(), domain.LanguageGo, []byte("package main"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	if _, err := tspool.QueryWithCache(tree.RootNode(), nil, domain.LanguageGo, "(not_a_node"); err == nil {
		t.Error("expected error for invalid query")
	}
}
