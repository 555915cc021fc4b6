package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Consecutive unbounded wildcards, e.g. ".*.*" or ".+.+".
var reAdjacentWildcards = regexp.MustCompile(`\.[*+]\.[*+]`)

// regexRule is one enumerable structural check over the pattern text.
// Structural rules run before any compilation attempt.
type regexRule struct {
	id       string
	severity Severity
	check    func(cfg Config, pattern string) (bool, string)
}

var regexRules = []regexRule{
	{
		id:       "regex.too_long",
		severity: SeverityError,
		check: func(cfg Config, p string) (bool, string) {
			if len(p) > cfg.MaxPatternLength {
				return true, fmt.Sprintf("regex pattern exceeds maximum length of %d", cfg.MaxPatternLength)
			}
			return false, ""
		},
	},
	{
		id:       "regex.nested_quantifier",
		severity: SeverityError,
		check: func(cfg Config, p string) (bool, string) {
			if hasNestedQuantifier(p) {
				return true, "nested quantifiers may cause catastrophic backtracking"
			}
			return false, ""
		},
	},
	{
		id:       "regex.adjacent_wildcards",
		severity: SeverityError,
		check: func(cfg Config, p string) (bool, string) {
			if reAdjacentWildcards.MatchString(p) {
				return true, "consecutive unbounded wildcards may cause catastrophic backtracking"
			}
			return false, ""
		},
	},
	{
		id:       "regex.duplicate_alternation",
		severity: SeverityError,
		check: func(cfg Config, p string) (bool, string) {
			if hasDuplicateAlternation(p) {
				return true, "quantified alternation with overlapping branches may cause catastrophic backtracking"
			}
			return false, ""
		},
	},
}

// ValidateRegexPattern checks an untrusted regular expression. Phases:
// length guard, structural backtracking heuristics, then a compilation
// attempt. Compilation runs only when the earlier phases produced no error
// finding; compiling an oversized or already-rejected pattern is the
// resource sink the guards exist to prevent. The heuristics are
// conservative: false positives are acceptable, missing an obviously
// pathological nested-quantifier shape is not.
func (v *Validator) ValidateRegexPattern(pattern string) Findings {
	if pattern == "" {
		return nil
	}
	var out Findings
	for _, r := range regexRules {
		if ok, msg := r.check(v.cfg, pattern); ok {
			out = append(out, Finding{Severity: r.severity, Message: msg, RuleID: r.id})
		}
	}
	if out.HasErrors() {
		return out
	}
	if _, err := regexp.Compile(pattern); err != nil {
		out = append(out, Finding{
			Severity: SeverityError,
			Message:  fmt.Sprintf("pattern does not compile: %v", err),
			RuleID:   "regex.compile",
		})
	}
	return out
}

func isQuantifier(c byte) bool {
	return c == '*' || c == '+' || c == '{'
}

// hasNestedQuantifier scans for a quantified group whose body itself
// contains a quantifier, the (a+)+ family. Escapes and character classes
// are skipped; quantifier characters inside them are literals. The scan is
// structural, so arbitrarily nested forms like ((a+))+ are caught too.
func hasNestedQuantifier(p string) bool {
	type group struct {
		quantified bool
	}
	var stack []group
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\':
			i++ // skip escaped character
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			stack = append(stack, group{})
		case c == ')':
			if len(stack) == 0 {
				continue
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closed.quantified {
				if i+1 < len(p) && isQuantifier(p[i+1]) {
					return true
				}
				// Body stays quantified from the enclosing group's view.
				if len(stack) > 0 {
					stack[len(stack)-1].quantified = true
				}
			}
		case isQuantifier(c):
			for j := range stack {
				stack[j].quantified = true
			}
		}
	}
	return false
}

// hasDuplicateAlternation scans for a quantified group whose alternation
// branches duplicate or prefix-overlap each other, the (a|a)* family.
// Backreference tricks cannot express this check in RE2, so it is a
// structural scan over the pattern text.
func hasDuplicateAlternation(p string) bool {
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			end, ok := matchingParen(p, i)
			if !ok {
				return false
			}
			if end+1 < len(p) && isQuantifier(p[end+1]) {
				if overlappingBranches(p[i+1 : end]) {
					return true
				}
			}
		}
	}
	return false
}

// matchingParen returns the index of the ')' closing the '(' at open.
func matchingParen(p string, open int) (int, bool) {
	depth := 0
	inClass := false
	for i := open; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// overlappingBranches splits a group body on its top-level alternations and
// reports whether any branch equals or is a prefix of another.
func overlappingBranches(body string) bool {
	// Strip non-capturing and named group markers so branch text compares
	// cleanly: (?:a|a) and (?P<x>a|a) both reduce to a|a.
	if strings.HasPrefix(body, "?") {
		switch {
		case strings.HasPrefix(body, "?P<"):
			if gt := strings.IndexByte(body, '>'); gt >= 0 {
				body = body[gt+1:]
			} else {
				return false
			}
		default:
			if colon := strings.IndexByte(body, ':'); colon >= 0 && colon <= 4 {
				body = body[colon+1:]
			} else {
				return false
			}
		}
	}

	var branches []string
	depth := 0
	inClass := false
	start := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '|' && depth == 0:
			branches = append(branches, body[start:i])
			start = i + 1
		}
	}
	branches = append(branches, body[start:])
	if len(branches) < 2 {
		return false
	}
	for i := 0; i < len(branches); i++ {
		for j := i + 1; j < len(branches); j++ {
			a, b := branches[i], branches[j]
			if a == b || strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
				return true
			}
		}
	}
	return false
}
