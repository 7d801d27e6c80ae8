package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/helmcode/devcompanion/pkg/model"
)

const missingExplanation = "The model returned no explanation for this code."

var fencePattern = regexp.MustCompile("```[a-zA-Z]*\n?|```")

// rawReview accepts list entries as plain strings or as objects; models
// sometimes return issues as {"line": 3, "message": "..."} and stored
// snapshots keep test cases as bare descriptions.
type rawReview struct {
	Explanation string            `json:"explanation"`
	Issues      []json.RawMessage `json:"issues"`
	Suggestions []json.RawMessage `json:"suggestions"`
	ConceptTags []json.RawMessage `json:"conceptTags"`
	TestCases   []json.RawMessage `json:"testCases"`
}

// ParseReviewResponse decodes a model reply into an AnalysisResult and fills
// in any missing fields so callers always get the full shape.
func ParseReviewResponse(raw string) (*model.AnalysisResult, error) {
	// Remove markdown code fences if present
	cleaned := stripFences(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, fmt.Errorf("model response is not a JSON object")
	}

	analysis, err := DecodeAnalysis([]byte(cleaned))
	if err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if analysis.Explanation == "" {
		analysis.Explanation = missingExplanation
	}
	return analysis, nil
}

// DecodeAnalysis decodes a JSON object in either the model reply shape or
// the stored snapshot shape. Object entries in the string lists are
// flattened to text and string test cases become descriptions. The slices
// of the result are never nil.
func DecodeAnalysis(data []byte) (*model.AnalysisResult, error) {
	if !isObject(data) {
		return nil, fmt.Errorf("analysis is not a JSON object")
	}
	var review rawReview
	if err := json.Unmarshal(data, &review); err != nil {
		return nil, err
	}

	return &model.AnalysisResult{
		Explanation: strings.TrimSpace(review.Explanation),
		Issues:      flatten(review.Issues),
		Suggestions: flatten(review.Suggestions),
		ConceptTags: flatten(review.ConceptTags),
		TestCases:   testCases(review.TestCases),
	}, nil
}

func isObject(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{")
}

// testCases keeps object entries as they are and wraps bare strings.
// Anything else is dropped.
func testCases(items []json.RawMessage) []model.TestCase {
	out := make([]model.TestCase, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, model.TestCase{Description: s})
			}
			continue
		}
		if !isObject(item) {
			continue
		}
		var tc model.TestCase
		if err := json.Unmarshal(item, &tc); err != nil {
			continue
		}
		out = append(out, tc)
	}
	return out
}

// flatten turns each entry into text and drops blanks. It never returns nil.
func flatten(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(entryText(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func entryText(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s
	}

	var obj struct {
		Line        int    `json:"line"`
		Severity    string `json:"severity"`
		Message     string `json:"message"`
		Description string `json:"description"`
		Text        string `json:"text"`
	}
	if err := json.Unmarshal(item, &obj); err != nil {
		return ""
	}

	text := obj.Message
	if text == "" {
		text = obj.Description
	}
	if text == "" {
		text = obj.Text
	}
	if text == "" {
		return ""
	}
	if obj.Severity != "" {
		text = fmt.Sprintf("[%s] %s", strings.ToLower(obj.Severity), text)
	}
	if obj.Line > 0 {
		text = fmt.Sprintf("Line %d: %s", obj.Line, text)
	}
	return text
}

// stripFences removes markdown code fences such as ```json ... ``` so JSON can be parsed
func stripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}
