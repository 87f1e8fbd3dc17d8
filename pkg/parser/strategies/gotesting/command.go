package gotesting

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser/buildtags"
	"github.com/specvital/locator/pkg/runner"
)

// Command builds `go test -v -run <pattern> [-tags=...] .` run from the
// runnable's directory.
func (s *Strategy) Command(r domain.Runnable) runner.Command {
	args := []string{"test", "-v", "-run", RunPattern(r.Name)}
	if r.Meta.Go != nil {
		if tags := buildtags.Flatten(r.Meta.Go.BuildTags); tags != "" {
			args = append(args, "-tags="+tags)
		}
	}
	args = append(args, ".")

	return runner.Command{
		Name: s.goBinary,
		Args: args,
		Dir:  filepath.Dir(r.Path),
	}
}

// RunPattern anchors each name segment for -run. Spaces become underscores
// the way go test rewrites subtest names.
func RunPattern(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = "^" + regexp.QuoteMeta(strings.ReplaceAll(seg, " ", "_")) + "$"
	}
	return strings.Join(segments, "/")
}
