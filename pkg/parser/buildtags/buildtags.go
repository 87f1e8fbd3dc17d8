// Package buildtags translates Go build constraint comments into the tag
// groups passed to `go test -tags=`.
//
// Both translators widen the constraint: every non-negated tag referenced by
// any OR-branch ends up in the result, so the file compiles whichever branch
// the build system would have picked. Negated tags cannot be expressed in a
// positive tag list and are omitted.
package buildtags

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser"
)

const (
	// LegacyPrefix starts a pre Go 1.17 constraint line. gofmt writes it
	// as LegacySpacedPrefix.
	LegacyPrefix       = "//+build"
	LegacySpacedPrefix = "// +build"
	// ModernPrefix starts a Go 1.17+ constraint line.
	ModernPrefix = "//go:build"

	nodeComment       = "comment"
	nodePackageClause = "package_clause"
)

// Extract finds the build constraint among the comments that precede the
// package clause and translates it. A //go:build line takes precedence over
// //+build lines. Returns nil when the file has no constraint or no package
// clause.
func Extract(root *sitter.Node, source []byte) []domain.TagGroup {
	if root == nil {
		return nil
	}

	var (
		modern  string
		legacy  []string
		sawPkg  bool
		comment string
	)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Type() == nodePackageClause {
			sawPkg = true
			break
		}
		if child.Type() != nodeComment {
			continue
		}

		comment = strings.TrimSpace(parser.GetNodeText(child, source))
		switch {
		case isConstraint(comment, ModernPrefix):
			if modern == "" {
				modern = comment
			}
		case isConstraint(comment, LegacyPrefix), isConstraint(comment, LegacySpacedPrefix):
			legacy = append(legacy, comment)
		}
	}

	if !sawPkg {
		return nil
	}
	if modern != "" {
		return Modern(modern)
	}

	var groups []domain.TagGroup
	for _, line := range legacy {
		groups = append(groups, Legacy(line)...)
	}
	return groups
}

// isConstraint reports whether line is prefix followed by end of line or blank.
func isConstraint(line, prefix string) bool {
	if !strings.HasPrefix(line, prefix) {
		return false
	}
	rest := line[len(prefix):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// Flatten joins every member of every group with commas, the format of the
// -tags flag. Returns "" for no groups.
func Flatten(groups []domain.TagGroup) string {
	return strings.Join(domain.FlattenTags(groups), ",")
}
