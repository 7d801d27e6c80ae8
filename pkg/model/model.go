package model

import "time"

// AnalysisResult is the structured review returned for a code snippet,
// whether it came from a hosted model or the heuristic engine.
type AnalysisResult struct {
	Explanation string     `json:"explanation" yaml:"explanation"`
	Issues      []string   `json:"issues" yaml:"issues"`
	Suggestions []string   `json:"suggestions" yaml:"suggestions"`
	ConceptTags []string   `json:"conceptTags" yaml:"conceptTags"`
	TestCases   []TestCase `json:"testCases" yaml:"testCases"`
}

type TestCase struct {
	Description    string `json:"description" yaml:"description"`
	Input          any    `json:"input" yaml:"input"`
	ExpectedOutput any    `json:"expectedOutput" yaml:"expectedOutput"`
}

// Snapshot is one stored version of a file together with its analysis.
type Snapshot struct {
	ID            string          `json:"id" yaml:"id"`
	Filename      string          `json:"filename" yaml:"filename"`
	Path          string          `json:"path" yaml:"path"`
	Content       string          `json:"content" yaml:"content"`
	Language      string          `json:"language" yaml:"language"`
	Version       int             `json:"version" yaml:"version"`
	CommitMessage string          `json:"commitMessage" yaml:"commitMessage"`
	Analysis      *AnalysisResult `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Tags          []string        `json:"tags" yaml:"tags"`
	UserID        *string         `json:"userId" yaml:"userId"`
	ContentHash   string          `json:"contentHash" yaml:"contentHash"`
	CreatedAt     time.Time       `json:"createdAt" yaml:"createdAt"`

	// Unchanged is set by Save when the content matches the previous version.
	Unchanged bool `json:"unchanged,omitempty" yaml:"unchanged,omitempty"`
}
