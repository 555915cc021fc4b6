package validation

import "fmt"

// ValidateTextLength guards free-form text (file contents, tool payloads)
// against pathological size before any pattern matching runs over it. The
// field name is embedded in the message for operator-facing reports.
func (v *Validator) ValidateTextLength(text, field string) Findings {
	if field == "" {
		field = "text"
	}
	if len(text) > v.cfg.MaxTextLength {
		return Findings{{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s exceeds maximum length of %d", field, v.cfg.MaxTextLength),
			RuleID:   "text.too_long",
		}}
	}
	return nil
}
