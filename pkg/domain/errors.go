package domain

import "errors"

var (
	// ErrParsing is returned when the grammar engine produces no tree.
	ErrParsing = errors.New("parsing error")
	// ErrNotFound is returned when no test or subtest matches the query.
	ErrNotFound = errors.New("no runnable found")
	// ErrPrecondition is returned when a request does not fit the framework,
	// e.g. a capability mismatch or an unsupported language.
	ErrPrecondition = errors.New("precondition failed")
)
