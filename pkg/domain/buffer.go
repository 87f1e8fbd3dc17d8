package domain

// Position is a zero-indexed row/column location in a buffer.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Range is the span of a syntax node.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// ContainsRow reports whether row lies within the range, inclusive on both ends.
// Columns are ignored.
func (r Range) ContainsRow(row int) bool {
	return row >= r.Start.Row && row <= r.End.Row
}

// Buffer is the text of one source file plus the cursor.
// Content is borrowed from the caller and must not be modified during a search.
type Buffer struct {
	Content  []byte
	Path     string
	Position Position
}

// NewBuffer creates a Buffer.
func NewBuffer(content []byte, path string, pos Position) Buffer {
	return Buffer{
		Content:  content,
		Path:     path,
		Position: pos,
	}
}

// Target is a discovery request against a buffer.
type Target struct {
	Capability Capability
	Buffer     Buffer
	Mode       SearchMode
}

// NewTarget creates a Target in nearest mode.
func NewTarget(capability Capability, buffer Buffer) *Target {
	return &Target{
		Capability: capability,
		Buffer:     buffer,
		Mode:       SearchNearest,
	}
}

// OverrideMode changes the search mode. Call before dispatching the search.
func (t *Target) OverrideMode(mode SearchMode) {
	t.Mode = mode
}
