// Package heuristic is the offline fallback reviewer. It pattern-matches a
// snippet for common syntax features and turns the findings into the same
// AnalysisResult shape a hosted model returns. It performs no I/O, keeps no
// state, and always produces a well-formed result.
package heuristic

import (
	"strings"

	"github.com/helmcode/devcompanion/pkg/model"
)

// Analyze reviews source using pattern heuristics. The language label is
// used verbatim in generated text and as the first concept tag.
func Analyze(source, language string) *model.AnalysisResult {
	f := detect(source)

	return &model.AnalysisResult{
		Explanation: explain(f, language),
		Issues:      findIssues(f, language),
		Suggestions: suggest(f, language),
		ConceptTags: conceptTags(f, language),
		TestCases:   testCases(f),
	}
}

// fragment is one optional piece of generated output.
type fragment struct {
	when bool
	text string
}

// collect keeps the text of every enabled fragment, preserving order.
func collect(fragments []fragment) []string {
	out := make([]string, 0, len(fragments))
	for _, fr := range fragments {
		if fr.when {
			out = append(out, fr.text)
		}
	}
	return out
}

func isWebScript(language string) bool {
	l := strings.ToLower(strings.TrimSpace(language))
	return l == "javascript" || l == "js"
}

func isTypedScript(language string) bool {
	l := strings.ToLower(strings.TrimSpace(language))
	return l == "typescript" || l == "ts"
}
