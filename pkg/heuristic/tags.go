package heuristic

import "strings"

func conceptTags(f features, language string) []string {
	groups := []struct {
		when bool
		tags []string
	}{
		{f.hasConst, []string{"Constants", "Immutability", "ES6+ Syntax"}},
		{f.hasLet, []string{"Block Scoping", "Variables"}},
		{f.hasVar, []string{"Function Scoping", "Legacy Syntax"}},
		{f.hasArithmetic, []string{"Arithmetic Operations"}},
		{f.hasComparison, []string{"Comparison Operators"}},
		{f.hasLogical, []string{"Logical Operators"}},
		{f.hasFunctions, []string{"Functions", "Modularity"}},
		{f.hasAsync, []string{"Asynchronous Programming", "Promises"}},
		{f.hasLoops, []string{"Loops", "Iteration"}},
		{f.hasConditionals, []string{"Conditional Logic", "Control Flow"}},
		{f.hasArrayOps, []string{"Arrays", "Data Structures"}},
		{f.hasObjects, []string{"Objects", "Object-Oriented Programming"}},
		{f.hasPrint, []string{"Debugging", "Console Output"}},
		{f.hasClasses, []string{"Classes", "Encapsulation"}},
		{true, []string{"Code Quality", "Best Practices"}},
	}

	tags := []string{language}
	for _, g := range groups {
		if !g.when {
			continue
		}
		for _, tag := range g.tags {
			// the language label stays unique and first
			if strings.EqualFold(tag, language) {
				continue
			}
			tags = append(tags, tag)
		}
	}
	return tags
}
