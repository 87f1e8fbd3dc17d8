package buildtags

import (
	"strings"

	"github.com/specvital/locator/pkg/domain"
)

const (
	tokenAnd    = "&&"
	tokenOr     = "||"
	tokenNot    = "!"
	tokenLParen = "("
	tokenRParen = ")"
)

var tokenPadder = strings.NewReplacer(
	tokenLParen, " ( ",
	tokenRParen, " ) ",
	tokenAnd, " && ",
	tokenOr, " || ",
	tokenNot, " ! ",
)

// Modern translates a "//go:build" expression.
//
// The expression is read left to right. An AND-group is built until "||"
// closes it as one alternative. "&&" with no group in progress reopens the
// last committed group, which binds a parenthesized expression to the terms
// that follow it. Groups inside parentheses are committed when the nesting
// depth returns to zero. "!" drops the next term or the next parenthesized
// expression.
func Modern(line string) []domain.TagGroup {
	expr := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ModernPrefix))

	t := &translator{}
	for _, tok := range strings.Fields(tokenPadder.Replace(expr)) {
		t.consume(tok)
	}
	t.commit()

	return t.groups
}

type translator struct {
	// groups are the committed AND-groups.
	groups []domain.TagGroup
	// alts are OR-alternatives in progress; the last one receives new terms.
	alts []domain.TagGroup
	// parens holds one entry per open parenthesis; true if its contents are dropped.
	parens []bool
	// negate drops the next term or parenthesized expression.
	negate bool
}

func (t *translator) consume(tok string) {
	switch tok {
	case tokenNot:
		t.negate = true
	case tokenLParen:
		t.parens = append(t.parens, t.negate || t.dropping())
		t.negate = false
	case tokenRParen:
		if len(t.parens) == 0 {
			return
		}
		t.parens = t.parens[:len(t.parens)-1]
		if len(t.parens) == 0 {
			t.commit()
		}
	case tokenAnd:
		if t.dropping() || t.inProgress() || len(t.groups) == 0 {
			return
		}
		last := t.groups[len(t.groups)-1]
		t.groups = t.groups[:len(t.groups)-1]
		t.alts = []domain.TagGroup{last}
	case tokenOr:
		if t.inProgress() {
			t.alts = append(t.alts, nil)
		}
	default:
		if t.negate {
			t.negate = false
			return
		}
		if t.dropping() {
			return
		}
		if len(t.alts) == 0 {
			t.alts = append(t.alts, nil)
		}
		t.alts[len(t.alts)-1] = append(t.alts[len(t.alts)-1], tok)
	}
}

func (t *translator) dropping() bool {
	return len(t.parens) > 0 && t.parens[len(t.parens)-1]
}

func (t *translator) inProgress() bool {
	for _, alt := range t.alts {
		if len(alt) > 0 {
			return true
		}
	}
	return false
}

func (t *translator) commit() {
	for _, alt := range t.alts {
		if len(alt) > 0 {
			t.groups = append(t.groups, alt)
		}
	}
	t.alts = nil
}
