package prompts

import "fmt"

// BuildReviewPrompt asks the model for a JSON review with the same five
// fields the heuristic engine produces.
func BuildReviewPrompt(code, language string) string {
	return fmt.Sprintf(`You are a professional code reviewer.

Language: %s

Analyze the following code and respond in pure JSON (no markdown) with exactly this structure:
{
  "explanation": "What the code does in plain English",
  "issues": ["potential bugs or poor practices, each with a short rationale"],
  "suggestions": ["concrete improvements or optimizations"],
  "conceptTags": ["%s", "core concepts or topics involved"],
  "testCases": [
    { "description": "short description", "input": {}, "expectedOutput": "any JSON value" }
  ]
}

Rules:
- "conceptTags" must start with the language label exactly as given above.
- If there are no issues, return a single entry saying no critical issues were found.
- Test cases must use concrete input values taken from the code where possible.

Code to analyze:
%s`, language, language, code)
}
