// Package rules loads and evaluates the declarative policy the hook
// enforces. Rules come from two places: hookify.*.local.md files under the
// project's .claude directory (markdown with YAML frontmatter) and a
// compiled-in anti-pattern set. Evaluation composes the rule patterns with
// the input validators; every reason an operation is rejected is surfaced,
// not just the first.
package rules

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Rule actions.
const (
	ActionWarn  = "warn"
	ActionBlock = "block"
)

// Event kinds a rule can target. An empty event matches every kind.
const (
	EventBash = "bash"
	EventFile = "file"
)

// Rule is one declarative policy entry.
type Rule struct {
	Name    string `yaml:"name" validate:"required"`
	Enabled bool   `yaml:"enabled"`
	Event   string `yaml:"event" validate:"omitempty,oneof=bash file"`
	Pattern string `yaml:"pattern"`
	Action  string `yaml:"action" validate:"omitempty,oneof=warn block"`

	// Operator-facing explanation, the markdown body of the rule file.
	Message string `yaml:"-"`

	// Originating file, or "builtin" for the compiled-in set.
	Source string `yaml:"-"`

	re *regexp.Regexp
}

var ruleValidate = validator.New()

// validateShape checks the frontmatter fields against their tags.
func (r *Rule) validateShape() error {
	if err := ruleValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid rule frontmatter: %w", err)
	}
	return nil
}

// Compile prepares the rule for matching. Safe to call more than once.
func (r *Rule) Compile() error {
	if r.re != nil {
		return nil
	}
	if r.Pattern == "" {
		return fmt.Errorf("rule %q has no pattern", r.Name)
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %q pattern does not compile: %w", r.Name, err)
	}
	r.re = re
	return nil
}

// AppliesTo reports whether the rule targets the given event kind.
func (r *Rule) AppliesTo(kind string) bool {
	return r.Event == "" || r.Event == kind
}

// Matches reports whether the compiled pattern matches the subject.
// An uncompiled rule never matches.
func (r *Rule) Matches(subject string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(subject)
}

// Blocks reports whether a match should deny the operation.
func (r *Rule) Blocks() bool {
	return r.Action == ActionBlock
}
