package heuristic

import (
	"fmt"
	"strings"
)

// undocumentedLineThreshold is the number of non-blank lines a snippet may
// have before missing comments are reported.
const undocumentedLineThreshold = 3

var nonDescriptiveNames = map[string]bool{
	"x": true, "y": true, "z": true,
	"a": true, "b": true,
	"i": true, "j": true,
	"temp": true, "tmp": true,
	"data": true, "val": true, "num": true,
}

const noIssuesFound = "No critical issues detected. The code follows basic conventions, but review the suggestions below for further improvements."

func findIssues(f features, language string) []string {
	vague := vagueNames(f)

	issues := collect([]fragment{
		{
			when: f.hasVar,
			text: "Use of 'var' detected: 'var' is function-scoped and hoisted, which can lead to unexpected behavior and accidental redeclaration. Prefer 'const' for values that never change and 'let' for values that are reassigned.",
		},
		{
			when: !f.hasComments && f.nonBlankLines > undocumentedLineThreshold,
			text: "Missing documentation: the code has no comments, which makes its intent harder to understand and maintain.",
		},
		{
			when: len(vague) > 0,
			text: fmt.Sprintf("Non-descriptive variable names (%s): short or generic names hide what a value represents. Use names that describe the data, such as 'totalPrice' instead of 'x'.", strings.Join(vague, ", ")),
		},
		{
			when: f.hasFunctions && !f.hasTryCatch,
			text: "Missing error handling: functions have no try/catch (or equivalent) blocks, so unexpected input or runtime failures will propagate uncaught.",
		},
		{
			when: f.hasArithmetic && !f.hasValidation,
			text: "Missing input validation for calculations: operands are not checked to be valid numbers, so non-numeric or undefined values can silently produce NaN or incorrect results.",
		},
		{
			when: f.hasPrint && isWebScript(language),
			text: "Debug statements left in code: console.log calls should be removed or replaced with a proper logging utility before shipping to production.",
		},
	})

	if len(issues) == 0 {
		return []string{noIssuesFound}
	}
	return issues
}

// vagueNames lists declared names found in the deny-list, in declaration
// order and without repeats.
func vagueNames(f features) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range f.declarations {
		if nonDescriptiveNames[d.name] && !seen[d.name] {
			seen[d.name] = true
			names = append(names, "'"+d.name+"'")
		}
	}
	return names
}
