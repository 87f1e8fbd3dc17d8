package buildtags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser"
)

func TestModern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []domain.TagGroup
	}{
		{name: "and", line: "//go:build unix && postgres", want: []domain.TagGroup{{"unix", "postgres"}}},
		{name: "or", line: "//go:build unix || postgres", want: []domain.TagGroup{{"unix"}, {"postgres"}}},
		{name: "negated alternative", line: "//go:build unix || !postgres", want: []domain.TagGroup{{"unix"}}},
		{name: "group and term", line: "//go:build (unix || !postgres) && mysql", want: []domain.TagGroup{{"unix", "mysql"}}},
		{name: "group or term", line: "//go:build (unix || !postgres) || mysql", want: []domain.TagGroup{{"unix"}, {"mysql"}}},
		{name: "leading negation", line: "//go:build !a && b", want: []domain.TagGroup{{"b"}}},
		{name: "negated group", line: "//go:build a && !(b)", want: []domain.TagGroup{{"a"}}},
		{name: "negated nested group", line: "//go:build !(a && (b || c)) && d", want: []domain.TagGroup{{"d"}}},
		{name: "no spaces", line: "//go:build (unix||windows)&&cgo", want: []domain.TagGroup{{"unix"}, {"windows", "cgo"}}},
		{name: "single tag", line: "//go:build integration", want: []domain.TagGroup{{"integration"}}},
		{name: "only negation", line: "//go:build !windows", want: nil},
		{name: "empty", line: "//go:build", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Modern(tt.line))
		})
	}
}

func TestModern_Malformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"//go:build ((",
		"//go:build ))",
		"//go:build && ||",
		"//go:build !!!",
		"//go:build a && (b ||",
		"//go:build ) a (",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() { Modern(in) }, in)
	}
}

func TestLegacy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []domain.TagGroup
	}{
		{name: "and", line: "//+build unix,postgres", want: []domain.TagGroup{{"unix", "postgres"}}},
		{name: "or", line: "//+build unix postgres", want: []domain.TagGroup{{"unix"}, {"postgres"}}},
		{name: "negated only", line: "//+build !unix", want: nil},
		{name: "negated option dropped", line: "//+build unix postgres !py03", want: []domain.TagGroup{{"unix"}, {"postgres"}}},
		{name: "negated member dropped", line: "//+build linux,!cgo darwin", want: []domain.TagGroup{{"linux"}, {"darwin"}}},
		{name: "spaced prefix", line: "// +build linux,386 darwin", want: []domain.TagGroup{{"linux", "386"}, {"darwin"}}},
		{name: "empty", line: "//+build", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Legacy(tt.line))
		})
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []domain.TagGroup
	}{
		{
			name:   "no constraint",
			source: "package foo\n",
			want:   nil,
		},
		{
			name:   "modern",
			source: "//go:build integration && postgres\n\npackage foo\n",
			want:   []domain.TagGroup{{"integration", "postgres"}},
		},
		{
			name:   "legacy",
			source: "// Package foo.\n//+build unix postgres\n\npackage foo\n",
			want:   []domain.TagGroup{{"unix"}, {"postgres"}},
		},
		{
			name:   "modern wins over legacy",
			source: "//go:build linux\n//+build linux darwin\n\npackage foo\n",
			want:   []domain.TagGroup{{"linux"}},
		},
		{
			name:   "gofmt legacy spelling",
			source: "// +build linux,cgo\n\npackage foo\n",
			want:   []domain.TagGroup{{"linux", "cgo"}},
		},
		{
			name:   "multiple legacy lines",
			source: "//+build linux\n//+build cgo\n\npackage foo\n",
			want:   []domain.TagGroup{{"linux"}, {"cgo"}},
		},
		{
			name:   "after package clause ignored",
			source: "package foo\n\n//go:build unix\n",
			want:   nil,
		},
		{
			name:   "similar prefix ignored",
			source: "//go:buildx unix\n\npackage foo\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := []byte(tt.source)
			tree, err := parser.ParseGo(context.Background(), source)
			require.NoError(t, err)
			defer tree.Close()

			assert.Equal(t, tt.want, Extract(tree.RootNode(), source))
		})
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Flatten(nil))
	assert.Equal(t, "unix,mysql,postgres", Flatten([]domain.TagGroup{{"unix", "mysql"}, {"postgres"}}))
}
