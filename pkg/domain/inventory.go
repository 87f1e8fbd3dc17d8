package domain

// TestFile holds every runnable discovered in one file.
type TestFile struct {
	// Framework is the framework that produced the runnables (e.g. "go-test").
	Framework string `json:"framework"`
	// Language is the programming language of this file.
	Language Language `json:"language"`
	// Path is the file path.
	Path string `json:"path"`
	// Runnables are the file-mode results for this file.
	Runnables []Runnable `json:"runnables,omitempty"`
}

// CountRunnables returns the number of runnables in this file.
func (f *TestFile) CountRunnables() int {
	return len(f.Runnables)
}

// Inventory represents a collection of test files in a project.
type Inventory struct {
	// Files contains all parsed test files.
	Files []TestFile `json:"files"`
	// RootPath is the root directory path of the scanned project.
	RootPath string `json:"rootPath"`
}

// CountRunnables returns the total number of runnables across all files.
func (inv Inventory) CountRunnables() int {
	count := 0
	for _, f := range inv.Files {
		count += f.CountRunnables()
	}
	return count
}
