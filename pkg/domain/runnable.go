package domain

import "strings"

// TagGroup is a set of build tags that must all be set (an AND-group).
type TagGroup []string

// GoTestMetadata carries go test specific data for a Runnable.
type GoTestMetadata struct {
	// Package is the package clause name of the file.
	Package string `json:"package,omitempty"`
	// BuildTags lists the AND-groups referenced by the file's build constraint.
	BuildTags []TagGroup `json:"buildTags,omitempty"`
}

// AppendBuildTags appends groups, skipping empty members and empty groups.
func (m *GoTestMetadata) AppendBuildTags(groups ...TagGroup) {
	for _, g := range groups {
		var clean TagGroup
		for _, tag := range g {
			if tag = strings.TrimSpace(tag); tag != "" {
				clean = append(clean, tag)
			}
		}
		if len(clean) > 0 {
			m.BuildTags = append(m.BuildTags, clean)
		}
	}
}

// Metadata is the language-specific part of a Runnable. Exactly one field is set.
type Metadata struct {
	Go *GoTestMetadata `json:"go,omitempty"`
}

// Runnable is a single executable test or subtest.
type Runnable struct {
	// Name is hierarchical, segments joined with "/" (e.g. "TestFoo/case_a").
	Name string `json:"name"`
	// Path is the source file path.
	Path string `json:"path"`
	// Range is the span of the defining node.
	Range Range    `json:"range"`
	Meta  Metadata `json:"meta"`
}

// Segments splits the hierarchical name.
func (r Runnable) Segments() []string {
	return strings.Split(r.Name, "/")
}

// IsAncestorOf reports whether other is nested below r by name.
func (r Runnable) IsAncestorOf(other Runnable) bool {
	return strings.HasPrefix(other.Name, r.Name+"/")
}

// FlattenTags returns all members of all groups in order.
func FlattenTags(groups []TagGroup) []string {
	var tags []string
	for _, g := range groups {
		tags = append(tags, g...)
	}
	return tags
}
