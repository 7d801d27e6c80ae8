package heuristic

import (
	"fmt"
	"strings"
)

const maxListedDeclarations = 3

var operationNames = map[string]string{
	"+": "addition",
	"-": "subtraction",
	"*": "multiplication",
	"/": "division",
	"%": "modulo",
}

func explain(f features, language string) string {
	fragments := []fragment{
		{when: true, text: opening(f, language)},
		{when: f.hasPrint, text: "It outputs results to the console."},
		{when: f.hasConditionals, text: "It uses conditional logic to branch between different execution paths."},
		{when: f.hasLoops, text: "It uses loops to iterate over data or repeat operations."},
	}
	return strings.Join(collect(fragments), " ")
}

func opening(f features, language string) string {
	switch {
	case f.hasFunctions:
		subject := "a function"
		if len(f.functionNames) > 0 {
			subject = fmt.Sprintf("the function '%s'", f.functionNames[0])
		}
		var clause string
		switch {
		case f.hasAsync:
			clause = "performs asynchronous operations using async/await or promises."
		case f.hasArithmetic:
			clause = "performs arithmetic calculations on its inputs."
		case f.hasArrayOps:
			clause = "processes and transforms collection data."
		default:
			clause = "encapsulates reusable logic that can be called from elsewhere in the program."
		}
		return fmt.Sprintf("This code defines %s which %s", subject, clause)

	case f.hasDeclarations():
		listed := f.declarations
		if len(listed) > maxListedDeclarations {
			listed = listed[:maxListedDeclarations]
		}
		pairs := make([]string, 0, len(listed))
		for _, d := range listed {
			pairs = append(pairs, fmt.Sprintf("%s (initialized to %s)", d.name, d.value))
		}
		noun := "variables"
		if len(f.declarations) == 1 {
			noun = "variable"
		}
		text := fmt.Sprintf("This %s code declares %d %s: %s.", language, len(f.declarations), noun, strings.Join(pairs, ", "))
		if op := f.firstOperator(); op != "" {
			text += fmt.Sprintf(" It performs %s on the declared values.", operationNames[op])
		}
		return text

	default:
		return fmt.Sprintf("This is a %s code snippet containing general program logic.", language)
	}
}
