package heuristic

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Pattern table. Each predicate is a whole-text match; none of them parse.
var (
	loopPattern        = regexp.MustCompile(`\b(for|while|do)\b`)
	conditionalPattern = regexp.MustCompile(`\b(if|else|switch|case|elif)\b`)
	functionPattern    = regexp.MustCompile(`\bfunction\b|=>|\bdef\s+\w+\s*\(|\bfunc\s|\bfn\s+\w+\s*\(|\b(?:public|private|protected|static)\s+[\w<>\[\],]+\s+\w+\s*\(`)
	classPattern       = regexp.MustCompile(`\b(class|interface|struct)\b`)
	asyncPattern       = regexp.MustCompile(`\b(async|await|Promise|Future|CompletableFuture)\b|\.then\s*\(`)
	commentPattern     = regexp.MustCompile(`(?m)//|/\*|^\s*#(?:\s|$)|"""|'''`)
	printPattern       = regexp.MustCompile(`console\.(?:log|info|warn|error|debug)\s*\(|\bprint(?:ln|f)?\s*\(|System\.out\.print|fmt\.Print|\bputs\s|\becho\s|std::cout|\bprintln!`)
	varPattern         = regexp.MustCompile(`\bvar\s+[A-Za-z_$]`)
	letPattern         = regexp.MustCompile(`\blet\s+[A-Za-z_$]`)
	constPattern       = regexp.MustCompile(`\bconst\s+[A-Za-z_$]`)
	arithmeticPattern  = regexp.MustCompile(`[\w)\]]\s*([+\-*/%])(?:\s*[\w(\[]|=)`)
	comparisonPattern  = regexp.MustCompile(`===?|!==?|<=|>=|\s[<>]\s`)
	logicalPattern     = regexp.MustCompile(`&&|\|\|`)
	arrayPattern       = regexp.MustCompile(`\.(?:map|filter|reduce|forEach|push|pop|shift|unshift|slice|splice|find|some|every|concat|includes|append|extend)\s*\(|=\s*\[`)
	objectPattern      = regexp.MustCompile(`=\s*\{|\bnew\s+[A-Z]\w*|\{\s*["']?\w+["']?\s*:`)
	tryCatchPattern    = regexp.MustCompile(`\b(try|catch|except|rescue)\b|if\s+err\s*!=\s*nil`)
	validationPattern  = regexp.MustCompile(`\bisNaN\s*\(|\bisFinite\s*\(|Number\.is(?:NaN|Finite|Integer)|typeof\s+\w+\s*===?\s*['"]number['"]|isinstance\s*\([^)]*\b(?:int|float)\b`)

	declarationPattern = regexp.MustCompile(`\b(const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*([^;\n]+)`)
	numberPattern      = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	functionNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bfunction\s+([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?(?:function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`),
		regexp.MustCompile(`\bdef\s+([A-Za-z_]\w*)\s*\(`),
		regexp.MustCompile(`\bfunc\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*\(`),
		regexp.MustCompile(`\bfn\s+([A-Za-z_]\w*)\s*\(`),
		regexp.MustCompile(`\b(?:public|private|protected|static)\s+(?:static\s+)?[\w<>\[\],]+\s+([A-Za-z_]\w*)\s*\(`),
	}
)

type declKind int

const (
	declConst declKind = iota
	declLet
	declVar
)

type declaration struct {
	kind  declKind
	name  string
	value string
}

// features holds every predicate and extraction result for one snippet.
// Synthesis stages read these flags and never re-scan the text.
type features struct {
	hasLoops        bool
	hasConditionals bool
	hasFunctions    bool
	hasClasses      bool
	hasAsync        bool
	hasComments     bool
	hasPrint        bool
	hasVar          bool
	hasLet          bool
	hasConst        bool
	hasArithmetic   bool
	hasComparison   bool
	hasLogical      bool
	hasArrayOps     bool
	hasObjects      bool
	hasTryCatch     bool
	hasValidation   bool

	nonBlankLines int
	declarations  []declaration
	functionNames []string
	operators     []string
	numbers       []float64
}

func detect(source string) features {
	f := features{
		hasLoops:        loopPattern.MatchString(source),
		hasConditionals: conditionalPattern.MatchString(source),
		hasFunctions:    functionPattern.MatchString(source),
		hasClasses:      classPattern.MatchString(source),
		hasAsync:        asyncPattern.MatchString(source),
		hasComments:     commentPattern.MatchString(source),
		hasPrint:        printPattern.MatchString(source),
		hasVar:          varPattern.MatchString(source),
		hasLet:          letPattern.MatchString(source),
		hasConst:        constPattern.MatchString(source),
		hasComparison:   comparisonPattern.MatchString(source),
		hasLogical:      logicalPattern.MatchString(source),
		hasArrayOps:     arrayPattern.MatchString(source),
		hasObjects:      objectPattern.MatchString(source),
		hasTryCatch:     tryCatchPattern.MatchString(source),
		hasValidation:   validationPattern.MatchString(source),
	}

	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) != "" {
			f.nonBlankLines++
		}
	}

	f.operators = extractOperators(source)
	f.hasArithmetic = len(f.operators) > 0
	f.declarations = extractDeclarations(source)
	f.functionNames = extractFunctionNames(source)
	f.numbers = extractNumbers(source)

	return f
}

func extractOperators(source string) []string {
	var ops []string
	for _, m := range arithmeticPattern.FindAllStringSubmatch(source, -1) {
		ops = append(ops, m[1])
	}
	return ops
}

func extractDeclarations(source string) []declaration {
	var decls []declaration
	for _, m := range declarationPattern.FindAllStringSubmatch(source, -1) {
		d := declaration{name: m[2], value: strings.TrimSpace(m[3])}
		switch m[1] {
		case "const":
			d.kind = declConst
		case "let":
			d.kind = declLet
		default:
			d.kind = declVar
		}
		decls = append(decls, d)
	}
	return decls
}

// extractFunctionNames collects names from every definition form, in order
// of appearance, without duplicates.
func extractFunctionNames(source string) []string {
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	for _, re := range functionNamePatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(source, -1) {
			hits = append(hits, hit{pos: loc[2], name: source[loc[2]:loc[3]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool)
	var names []string
	for _, h := range hits {
		if seen[h.name] {
			continue
		}
		seen[h.name] = true
		names = append(names, h.name)
	}
	return names
}

func extractNumbers(source string) []float64 {
	var nums []float64
	for _, lit := range numberPattern.FindAllString(source, -1) {
		n, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

func (f features) hasDeclarations() bool {
	return len(f.declarations) > 0
}

func (f features) firstOperator() string {
	if len(f.operators) == 0 {
		return ""
	}
	return f.operators[0]
}
