package parser

import (
	"testing"

	"github.com/specvital/locator/pkg/domain"
)

func TestResolveCursor_SearchScope(t *testing.T) {
	t.Parallel()

	_, root := parseSample(t)
	source := []byte(sampleSource)

	tests := []struct {
		name     string
		pos      domain.Position
		wantType string
		wantName string
	}{
		{
			name:     "should resolve inside a subtest to the test",
			pos:      domain.Position{Row: 6, Column: 10},
			wantType: "function_declaration",
			wantName: "TestA",
		},
		{
			name:     "should resolve on the signature line",
			pos:      domain.Position{Row: 9, Column: 0},
			wantType: "function_declaration",
			wantName: "TestB",
		},
		{
			name:     "should resolve past the end of a line to the next declaration",
			pos:      domain.Position{Row: 7, Column: 5},
			wantType: "function_declaration",
			wantName: "TestB",
		},
		{
			name:     "should resolve the import line to the import",
			pos:      domain.Position{Row: 2, Column: 3},
			wantType: "import_declaration",
		},
		{
			name:     "should fall back to the root beyond the file",
			pos:      domain.Position{Row: 100},
			wantType: "source_file",
		},
		{
			name:     "should clamp negative positions",
			pos:      domain.Position{Row: -1, Column: -1},
			wantType: "package_clause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// When
			scope := SearchScope(ResolveCursor(root, tt.pos))

			// Then
			if scope.Type() != tt.wantType {
				t.Fatalf("scope type = %q, want %q", scope.Type(), tt.wantType)
			}
			if tt.wantName == "" {
				return
			}
			if name := GetNodeText(scope.ChildByFieldName("name"), source); name != tt.wantName {
				t.Errorf("scope name = %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestSearchScope_Root(t *testing.T) {
	t.Parallel()

	_, root := parseSample(t)

	if got := SearchScope(root); got.Type() != "source_file" {
		t.Errorf("SearchScope(root) = %q, want source_file", got.Type())
	}
}
