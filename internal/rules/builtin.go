package rules

import "regexp"

// SourceBuiltin marks rules shipped with the binary.
const SourceBuiltin = "builtin"

// builtinRules are always available, independent of project rule files.
// They cover the leaks and foot-guns that show up in practice before a
// project has written any rules of its own.
var builtinRules = []Rule{
	{
		Name:    "hardcoded-api-key",
		Enabled: true,
		Event:   EventFile,
		Pattern: `sk-[A-Za-z0-9]{20,}`,
		Action:  ActionBlock,
		Message: "Content contains what looks like a hardcoded API key. Load secrets from the environment instead.",
	},
	{
		Name:    "hardcoded-aws-key",
		Enabled: true,
		Event:   EventFile,
		Pattern: `AKIA[0-9A-Z]{16}`,
		Action:  ActionBlock,
		Message: "Content contains what looks like an AWS access key ID. Load credentials from the environment instead.",
	},
	{
		Name:    "python-eval",
		Enabled: true,
		Event:   EventFile,
		Pattern: `\beval\s*\(`,
		Action:  ActionWarn,
		Message: "eval() executes arbitrary code. Prefer ast.literal_eval or an explicit dispatch table.",
	},
	{
		Name:    "sql-fstring-injection",
		Enabled: true,
		Event:   EventFile,
		Pattern: `(?i)f["'](?:SELECT|INSERT|UPDATE|DELETE)\b[^"']*\{`,
		Action:  ActionWarn,
		Message: "SQL built with an f-string is injectable. Use parameterized queries.",
	},
	{
		Name:    "swallowed-exception",
		Enabled: true,
		Event:   EventFile,
		Pattern: `(?m)^\s*except(\s+\w+(\s+as\s+\w+)?)?\s*:\s*\n\s*pass\b`,
		Action:  ActionWarn,
		Message: "Exception handler discards the error. Log it or re-raise.",
	},
	{
		Name:    "discarded-error",
		Enabled: true,
		Event:   EventFile,
		Pattern: `(?m)^\s*_\s*=\s*err\b`,
		Action:  ActionWarn,
		Message: "Error assigned to the blank identifier. Handle it or document why it can be ignored.",
	},
	{
		Name:    "debug-print",
		Enabled: true,
		Event:   EventFile,
		Pattern: `(?m)^\s*print\(`,
		Action:  ActionWarn,
		Message: "Leftover print() call. Use the project logger or remove it.",
	},
	{
		Name:    "chmod-777",
		Enabled: true,
		Event:   EventFile,
		Pattern: `(?i)(\bchmod\s+(-[a-z]+\s+)*0?777\b|\bchmod\s*\([^)\n]*\b0o?777\b)`,
		Action:  ActionBlock,
		Message: "chmod to mode 777 makes the target world-writable. Scope permissions to the owning user or group.",
	},
	{
		Name:    "curl-pipe-shell",
		Enabled: true,
		Event:   EventFile,
		Pattern: `(?i)\b(curl|wget)\b[^\n|;&]*\|\s*(ba|z)?sh\b`,
		Action:  ActionWarn,
		Message: "Downloaded script piped straight into a shell. Download to a file and review it before running.",
	},
	{
		Name:    "force-push",
		Enabled: true,
		Event:   EventBash,
		Pattern: `git\s+push\b[^|;&]*\s(--force|-[a-z]*f[a-z]*)(\s|$)`,
		Action:  ActionWarn,
		Message: "Force push rewrites shared history. Prefer --force-with-lease if a rewrite is intended.",
	},
}

func init() {
	for i := range builtinRules {
		builtinRules[i].Source = SourceBuiltin
		builtinRules[i].re = regexp.MustCompile(builtinRules[i].Pattern)
	}
}

// Builtin returns a copy of the built-in rule set.
func Builtin() []Rule {
	out := make([]Rule, len(builtinRules))
	copy(out, builtinRules)
	return out
}

// BuiltinFor returns the built-in rules applicable to one event kind.
func BuiltinFor(event string) []Rule {
	var out []Rule
	for _, r := range builtinRules {
		if r.AppliesTo(event) {
			out = append(out, r)
		}
	}
	return out
}
