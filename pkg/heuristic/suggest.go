package heuristic

const performanceTip = "Performance tip: keep variable scope as narrow as possible and avoid unnecessary globals so the runtime can release memory early and optimize hot paths."

func suggest(f features, language string) []string {
	return collect([]fragment{
		{
			when: f.hasConst && f.hasArithmetic,
			text: "Good use of 'const' for values that do not change. Extract magic numbers into named constants (for example TAX_RATE = 0.08) so calculations document themselves.",
		},
		{
			when: f.hasDeclarations() && !f.hasFunctions,
			text: "Wrap this logic in a pure function that takes its inputs as parameters and returns a result, so it can be reused and tested in isolation.",
		},
		{
			when: f.hasArithmetic && isWebScript(language),
			text: "For financial or high-precision arithmetic, use a library such as decimal.js or big.js to avoid floating-point rounding errors (0.1 + 0.2 !== 0.3).",
		},
		{
			when: !f.hasComments,
			text: "Add comments or doc comments describing the purpose, inputs and outputs of the code.",
		},
		{
			when: isWebScript(language),
			text: "Consider adopting TypeScript to catch type errors at compile time and make function contracts explicit.",
		},
		{
			when: isTypedScript(language),
			text: "Enable strict mode and annotate function parameters and return values with explicit types to get the most out of the TypeScript compiler.",
		},
		{
			when: f.hasArithmetic,
			text: "Add unit tests that cover normal values, zero, negative numbers and very large inputs to verify the calculations.",
		},
		{
			when: len(f.declarations) >= 3 && !f.hasObjects,
			text: "Group related values into an object (for example const config = { rate: 10, limit: 5 }) to keep related data together.",
		},
		{
			when: true,
			text: performanceTip,
		},
	})
}
