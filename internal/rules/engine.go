package rules

import (
	"fmt"

	"hookify/pkg/hooklog"
	"hookify/pkg/validation"
)

// ToolEvent is one tool invocation under evaluation.
type ToolEvent struct {
	Kind     string // EventBash or EventFile
	Tool     string // originating tool name, for logs and audit
	Command  string // bash events
	FilePath string // file events
	Content  string // file events: content being written
	Cwd      string
}

// Subject returns the text rules match against for this event kind.
func (ev ToolEvent) Subject() string {
	if ev.Kind == EventBash {
		return ev.Command
	}
	return ev.Content
}

// Decision is the outcome of evaluating one tool event. Block means the
// invocation must be denied; Reasons explain a block and Advisories carry
// non-blocking warnings. Matched lists every rule that fired, blocking or
// not.
type Decision struct {
	Block      bool
	Findings   validation.Findings
	Matched    []string
	Reasons    []string
	Advisories []string
}

// Engine evaluates tool events against validation checks and rules.
type Engine struct {
	v   *validation.Validator
	log *hooklog.Logger
}

// NewEngine builds an engine. log may be nil.
func NewEngine(v *validation.Validator, log *hooklog.Logger) *Engine {
	if v == nil {
		v = validation.NewValidator(validation.DefaultConfig())
	}
	return &Engine{v: v, log: log}
}

// Evaluate runs the validation checks for the event kind, then matches each
// applicable rule against the event subject. Error findings and matched
// block rules deny; warning findings and matched warn rules only advise.
// When the subject exceeds the text limit the rule pass is skipped so
// unbounded input cannot stall pattern matching.
func (e *Engine) Evaluate(ruleset []Rule, ev ToolEvent) Decision {
	var d Decision

	switch ev.Kind {
	case EventBash:
		d.Findings = append(d.Findings, e.v.ValidateBashCommand(ev.Command)...)
	case EventFile:
		d.Findings = append(d.Findings, e.v.ValidateFilePath(ev.FilePath)...)
		d.Findings = append(d.Findings, e.v.ValidateTextLength(ev.Content, "content")...)
	default:
		e.log.Debug("unknown event kind, skipping checks", map[string]any{"kind": ev.Kind})
	}

	for _, f := range d.Findings {
		if f.Severity == validation.SeverityError {
			d.Block = true
			d.Reasons = append(d.Reasons, f.Message)
		} else {
			d.Advisories = append(d.Advisories, f.Message)
		}
	}

	if oversized(d.Findings) {
		e.log.Warning("subject exceeds text limit, skipping rule pass", map[string]any{
			"tool": ev.Tool,
			"kind": ev.Kind,
		})
		return d
	}

	subject := ev.Subject()
	for _, r := range ruleset {
		if !r.AppliesTo(ev.Kind) || !r.Matches(subject) {
			continue
		}
		d.Matched = append(d.Matched, r.Name)
		line := fmt.Sprintf("%s: %s", r.Name, r.Message)
		if r.Blocks() {
			d.Block = true
			d.Reasons = append(d.Reasons, line)
		} else {
			d.Advisories = append(d.Advisories, line)
		}
		e.log.Info("rule matched", map[string]any{
			"rule":   r.Name,
			"action": r.Action,
			"tool":   ev.Tool,
		})
	}
	return d
}

func oversized(fs validation.Findings) bool {
	for _, f := range fs {
		if f.RuleID == "text.too_long" {
			return true
		}
	}
	return false
}
