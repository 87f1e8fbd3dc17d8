package buildtags

import (
	"strings"

	"github.com/specvital/locator/pkg/domain"
)

// Legacy translates a "//+build" or "// +build" line. Space separated options are OR-ed and
// become one group each; comma separated terms within an option form the
// AND-group. Negated terms are dropped from their group and groups left
// empty are omitted.
func Legacy(line string) []domain.TagGroup {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, LegacySpacedPrefix)
	expr := strings.TrimSpace(strings.TrimPrefix(line, LegacyPrefix))

	var groups []domain.TagGroup
	for _, option := range strings.Fields(expr) {
		var group domain.TagGroup
		for _, term := range strings.Split(option, ",") {
			if term == "" || strings.HasPrefix(term, "!") {
				continue
			}
			group = append(group, term)
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}
