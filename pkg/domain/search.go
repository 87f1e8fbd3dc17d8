package domain

import (
	"fmt"
	"strings"
)

// Capability is the kind of tooling a framework provides.
type Capability string

const (
	CapabilityTestRunner Capability = "test-runner"
	CapabilityDebugger   Capability = "debugger"
)

// SearchMode is the granularity of a discovery request.
type SearchMode int

const (
	// SearchNearest selects the smallest unit containing the cursor:
	// a subtest if one contains it, otherwise the enclosing test.
	SearchNearest SearchMode = iota
	// SearchMethod selects the enclosing top-level test, ignoring subtests.
	SearchMethod
	// SearchFile selects every test and resolvable subtest in the file.
	SearchFile
)

func (m SearchMode) String() string {
	switch m {
	case SearchNearest:
		return "nearest"
	case SearchMethod:
		return "method"
	case SearchFile:
		return "file"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// ParseSearchMode parses the String form of a mode, case-insensitively.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "":
		return SearchNearest, nil
	case "method", "function":
		return SearchMethod, nil
	case "file":
		return SearchFile, nil
	default:
		return SearchNearest, fmt.Errorf("unknown search mode %q", s)
	}
}

// CapabilityDescriptor maps a UI-facing label to the search it performs.
type CapabilityDescriptor struct {
	Capability  Capability `json:"capability"`
	Mode        SearchMode `json:"mode"`
	Description string     `json:"description"`
}
