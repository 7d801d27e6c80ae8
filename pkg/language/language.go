// Package language maps the loose language identifiers callers send
// ("js", "py", "cpp") to the display labels used in analysis output.
package language

import (
	"path/filepath"
	"strings"
)

// Default is the label used when a caller does not name a language.
const Default = "JavaScript"

// supported lists the display labels in the order the web client offers them.
var supported = []string{
	"JavaScript", "TypeScript", "Python", "Java", "C++", "C", "C#",
	"Go", "Rust", "PHP", "Ruby", "Swift", "Kotlin",
}

var aliases = map[string]string{
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"jsx":        "JavaScript",
	"node":       "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"tsx":        "TypeScript",
	"python":     "Python",
	"py":         "Python",
	"java":       "Java",
	"cpp":        "C++",
	"c++":        "C++",
	"cxx":        "C++",
	"c":          "C",
	"csharp":     "C#",
	"c#":         "C#",
	"cs":         "C#",
	"go":         "Go",
	"golang":     "Go",
	"rust":       "Rust",
	"rs":         "Rust",
	"php":        "PHP",
	"ruby":       "Ruby",
	"rb":         "Ruby",
	"swift":      "Swift",
	"kotlin":     "Kotlin",
	"kt":         "Kotlin",
}

var extensions = map[string]string{
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".mjs":   "JavaScript",
	".cjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".py":    "Python",
	".java":  "Java",
	".cpp":   "C++",
	".cc":    "C++",
	".cxx":   "C++",
	".hpp":   "C++",
	".c":     "C",
	".h":     "C",
	".cs":    "C#",
	".go":    "Go",
	".rs":    "Rust",
	".php":   "PHP",
	".rb":    "Ruby",
	".swift": "Swift",
	".kt":    "Kotlin",
	".kts":   "Kotlin",
}

// Normalize returns the display label for label. Unknown labels are returned
// trimmed but otherwise untouched; an empty label yields Default.
func Normalize(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return Default
	}
	if display, ok := aliases[strings.ToLower(trimmed)]; ok {
		return display
	}
	return trimmed
}

// FromPath detects the language of a file from its extension.
// It returns "" when the extension is not recognized.
func FromPath(path string) string {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Supported returns the known display labels.
func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}
