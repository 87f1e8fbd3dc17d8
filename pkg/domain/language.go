// Package domain defines the core types for runnable test discovery.
package domain

import (
	"path/filepath"
	"strings"
)

// Language represents a programming language.
type Language string

// Declared languages. Only Go has a framework implementation.
const (
	LanguageGo     Language = "go"
	LanguagePython Language = "python"
	LanguageRust   Language = "rust"
)

var extLanguages = map[string]Language{
	".go": LanguageGo,
	".py": LanguagePython,
	".rs": LanguageRust,
}

// LanguageForPath returns the language implied by the file extension.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}
