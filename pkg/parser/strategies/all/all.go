// Package all imports all parser strategies for side-effect registration.
// Usage: _ "github.com/specvital/locator/pkg/parser/strategies/all"
package all

import (
	_ "github.com/specvital/locator/pkg/parser/strategies/gotesting"
)
