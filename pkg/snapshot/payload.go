package snapshot

import (
	"encoding/json"
	"strings"

	"github.com/helmcode/devcompanion/pkg/model"
	"github.com/helmcode/devcompanion/pkg/parser"
)

// Validation codes reported to API clients.
const (
	CodePayloadRequired  = "payload_required"
	CodeFilenameRequired = "filename_required_string"
	CodePathRequired     = "path_required_string"
	CodeLanguageRequired = "language_required_string"
	CodeContentRequired  = "content_required"
	CodeTagsInvalid      = "tags_string_array"
	CodeAnalysisInvalid  = "analysis_object"
)

// Payload is a request to store a new version of a file.
type Payload struct {
	Filename      string                `json:"filename"`
	Path          string                `json:"path"`
	Content       *string               `json:"content"`
	Language      string                `json:"language"`
	CommitMessage string                `json:"commitMessage"`
	Tags          []string              `json:"tags"`
	UserID        *string               `json:"userId"`
	Analysis      *model.AnalysisResult `json:"analysis"`
}

// ValidationError lists every problem found in a payload.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid snapshot payload: " + strings.Join(e.Errors, ", ")
}

// Validate checks the required fields. Empty content is allowed, absent
// content is not.
func Validate(p *Payload) error {
	if errs := problems(p); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func problems(p *Payload) []string {
	if p == nil {
		return []string{CodePayloadRequired}
	}

	var errs []string
	if p.Filename == "" {
		errs = append(errs, CodeFilenameRequired)
	}
	if p.Path == "" {
		errs = append(errs, CodePathRequired)
	}
	if p.Language == "" {
		errs = append(errs, CodeLanguageRequired)
	}
	if p.Content == nil {
		errs = append(errs, CodeContentRequired)
	}
	return errs
}

// ParsePayload decodes a JSON request body field by field so that a wrong
// type is reported with the same code as a missing value instead of a
// generic decode failure.
func ParsePayload(data []byte) (*Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, &ValidationError{Errors: []string{CodePayloadRequired}}
	}

	p := &Payload{
		Filename:      stringField(fields, "filename"),
		Path:          stringField(fields, "path"),
		Language:      stringField(fields, "language"),
		CommitMessage: stringField(fields, "commitMessage"),
	}
	if s, ok := optionalString(fields, "content"); ok {
		p.Content = &s
	}
	if s, ok := optionalString(fields, "userId"); ok {
		p.UserID = &s
	}

	errs := problems(p)
	if raw, ok := fields["tags"]; ok {
		if err := json.Unmarshal(raw, &p.Tags); err != nil {
			errs = append(errs, CodeTagsInvalid)
		}
	}
	if raw, ok := fields["analysis"]; ok && string(raw) != "null" {
		analysis, err := parser.DecodeAnalysis(raw)
		if err != nil {
			errs = append(errs, CodeAnalysisInvalid)
		}
		p.Analysis = analysis
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return p, nil
}

// stringField returns the value only when it is a JSON string. Null counts
// as absent.
func stringField(fields map[string]json.RawMessage, key string) string {
	s, _ := optionalString(fields, key)
	return s
}

func optionalString(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
