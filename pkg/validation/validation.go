// Package validation applies allowlist/denylist rules to untrusted strings
// before the hook lets a tool operation proceed. Each validator is a pure
// function of its input and configuration: no I/O, no shared state, and the
// same input always yields the same findings. Rejections are returned as
// findings, never raised, so callers treat them as control flow.
//
// Checks live in enumerable rule tables (one per input kind) so individual
// rules can be unit tested and extended without touching unrelated logic.
package validation

// Severity classifies a finding. Errors block the operation; warnings are
// advisory only and never block.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single validation result. An empty findings list means the
// input was accepted; any error-severity finding means the input must not
// be used.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	RuleID   string   `json:"rule_id,omitempty"`
}

// Findings is an ordered list of results. When several rules fire, every
// applicable finding is present, not just the first.
type Findings []Finding

// HasErrors reports whether any finding blocks the operation.
func (fs Findings) HasErrors() bool {
	for _, f := range fs {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the blocking findings in order.
func (fs Findings) Errors() Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns the advisory findings in order.
func (fs Findings) Warnings() Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Messages returns every finding message in order. A caller surfacing a
// rejection shows all of them so the operator sees every reason, not only
// the first.
func (fs Findings) Messages() []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Message)
	}
	return out
}

// Default limits. DoS guards against pathological input, not correctness
// bounds.
const (
	DefaultMaxPathLength    = 4096
	DefaultMaxCommandLength = 10000
	DefaultMaxPatternLength = 500
	DefaultMaxTextLength    = 1_000_000
)

// Config bounds validator behavior. WorkspaceRoot is the only directory
// absolute paths are accepted under; when empty, every absolute path is
// rejected (allowlist default). Zero limits fall back to the defaults.
type Config struct {
	WorkspaceRoot    string
	MaxPathLength    int
	MaxCommandLength int
	MaxPatternLength int
	MaxTextLength    int
}

// DefaultConfig returns the default limits with no workspace root.
func DefaultConfig() Config {
	return Config{
		MaxPathLength:    DefaultMaxPathLength,
		MaxCommandLength: DefaultMaxCommandLength,
		MaxPatternLength: DefaultMaxPatternLength,
		MaxTextLength:    DefaultMaxTextLength,
	}
}

// Validator applies the rule tables under one configuration. Construct it
// once and share it freely; methods never mutate it.
type Validator struct {
	cfg Config
}

// NewValidator builds a validator, filling zero config fields from the
// defaults.
func NewValidator(cfg Config) *Validator {
	if cfg.MaxPathLength <= 0 {
		cfg.MaxPathLength = DefaultMaxPathLength
	}
	if cfg.MaxCommandLength <= 0 {
		cfg.MaxCommandLength = DefaultMaxCommandLength
	}
	if cfg.MaxPatternLength <= 0 {
		cfg.MaxPatternLength = DefaultMaxPatternLength
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}
	return &Validator{cfg: cfg}
}

// Config returns the effective configuration.
func (v *Validator) Config() Config {
	return v.cfg
}
