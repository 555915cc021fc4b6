package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// commandView carries the raw command plus masked variants the rules match
// against. Single-quoted text never expands, so it is blanked everywhere.
// Double-quoted text expands but passes as one word, so it is blanked only
// for the expansion rules; command substitution still executes inside
// double quotes and is matched on the unquoted view.
type commandView struct {
	raw      string
	unquoted string // single-quoted spans blanked
	bare     string // single- and double-quoted spans blanked
}

func newCommandView(cmd string) commandView {
	return commandView{
		raw:      cmd,
		unquoted: maskQuotes(cmd, false),
		bare:     maskQuotes(cmd, true),
	}
}

// maskQuotes blanks quoted spans with spaces, keeping offsets and word
// boundaries intact. Single-quoted content is always blanked; double-quoted
// content only when maskDouble is set. Quote nesting follows shell rules:
// a double quote inside single quotes is literal and vice versa.
func maskQuotes(s string, maskDouble bool) string {
	var b strings.Builder
	b.Grow(len(s))
	inSingle := false
	inDouble := false
	for _, r := range s {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteRune(r)
		case r == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteRune(r)
		case inSingle:
			b.WriteRune(' ')
		case inDouble && maskDouble:
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	// $( or backtick: embedded command execution.
	reSubstitution = regexp.MustCompile("\\$\\(|`")

	// $NAME or ${NAME}: variable expansion.
	reExpansion = regexp.MustCompile(`\$\{?[A-Za-z_][A-Za-z0-9_]*`)

	// Command words that remove or rewrite data or widen access.
	reDestructiveHead = regexp.MustCompile(`(?i)(^|[\s;&|])(rm|rmdir|mv|dd|chmod|chown|mkfs[.\w]*|truncate)(\s|$)`)

	// rm with recursive and force combined in one flag token.
	reRecursiveForce = regexp.MustCompile(`(?i)\brm\s+(-[a-z]*r[a-z]*f|-[a-z]*f[a-z]*r)[a-z]*\b`)

	// Recursive force delete whose target is an absolute path.
	reRootDelete = regexp.MustCompile(`(?i)\brm\s+-[a-z]*(rf|fr)[a-z]*\s+/`)

	// World-writable permission grants.
	rePermissionWidening = regexp.MustCompile(`(?i)\bchmod\s+(-[a-z]+\s+)*(777|a\+rwx)\b`)

	// eval as a command word.
	reEval = regexp.MustCompile(`(?i)(^|[\s;&|])eval(\s|$)`)

	// Downloader output piped straight into a shell.
	rePipeToShell = regexp.MustCompile(`(?i)\b(curl|wget)\b[^|;&]*\|\s*(ba|z)?sh\b`)
)

const shellControlChars = ";&|<>"

// commandRule is one enumerable shell command check.
type commandRule struct {
	id       string
	severity Severity
	check    func(cfg Config, v commandView) (bool, string)
}

// commandRules fire in order: the length guard, then injection signatures
// (errors), then destructive-operation advisories (warnings).
var commandRules = []commandRule{
	{
		id:       "command.too_long",
		severity: SeverityError,
		check: func(cfg Config, v commandView) (bool, string) {
			if len(v.raw) > cfg.MaxCommandLength {
				return true, fmt.Sprintf("command exceeds maximum length of %d", cfg.MaxCommandLength)
			}
			return false, ""
		},
	},
	{
		id:       "command.substitution",
		severity: SeverityError,
		check: func(cfg Config, v commandView) (bool, string) {
			if reSubstitution.MatchString(v.unquoted) {
				return true, "command substitution executes embedded command output"
			}
			return false, ""
		},
	},
	{
		id:       "command.interpolation",
		severity: SeverityError,
		check: func(cfg Config, v commandView) (bool, string) {
			if strings.ContainsAny(v.bare, shellControlChars) && reExpansion.MatchString(v.bare) {
				return true, "unquoted variable expansion combined with shell control characters"
			}
			return false, ""
		},
	},
	{
		id:       "command.expansion_destructive",
		severity: SeverityError,
		check: func(cfg Config, v commandView) (bool, string) {
			if reDestructiveHead.MatchString(v.bare) && reExpansion.MatchString(v.bare) {
				return true, "unquoted variable expansion passed to a destructive operation"
			}
			return false, ""
		},
	},
	{
		id:       "command.recursive_delete",
		severity: SeverityWarning,
		check: func(cfg Config, v commandView) (bool, string) {
			if reRecursiveForce.MatchString(v.bare) {
				return true, "recursive force delete"
			}
			return false, ""
		},
	},
	{
		id:       "command.root_delete",
		severity: SeverityWarning,
		check: func(cfg Config, v commandView) (bool, string) {
			if reRootDelete.MatchString(v.bare) {
				return true, "recursive force delete of an absolute path"
			}
			return false, ""
		},
	},
	{
		id:       "command.permission_widening",
		severity: SeverityWarning,
		check: func(cfg Config, v commandView) (bool, string) {
			if rePermissionWidening.MatchString(v.bare) {
				return true, "overly permissive file permissions"
			}
			return false, ""
		},
	},
	{
		id:       "command.eval",
		severity: SeverityWarning,
		check: func(cfg Config, v commandView) (bool, string) {
			if reEval.MatchString(v.bare) {
				return true, "arbitrary code execution via eval"
			}
			return false, ""
		},
	},
	{
		id:       "command.pipe_to_shell",
		severity: SeverityWarning,
		check: func(cfg Config, v commandView) (bool, string) {
			if rePipeToShell.MatchString(v.bare) {
				return true, "piping a remote download into a shell"
			}
			return false, ""
		},
	},
}

// ValidateBashCommand checks an untrusted shell command string. Commands
// that pass arguments discretely (quoted expansions, no substitution)
// produce no error findings; destructive operations still draw advisory
// warnings because legitimate uses exist.
func (v *Validator) ValidateBashCommand(command string) Findings {
	if command == "" {
		return nil
	}
	view := newCommandView(command)
	var out Findings
	for _, r := range commandRules {
		if ok, msg := r.check(v.cfg, view); ok {
			out = append(out, Finding{Severity: r.severity, Message: msg, RuleID: r.id})
		}
	}
	return out
}
