// Package doctor diagnoses a hookify installation: plugin layout,
// executable bits, settings, and rule files. Misconfiguration here means
// the hook silently allows everything, so the checks favor loud answers
// with concrete resolutions over terse ones.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"hookify/internal/config"
	"hookify/internal/rules"
	"hookify/pkg/hooklog"
	"hookify/pkg/validation"
)

// Check statuses.
const (
	StatusOK   = "ok"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// HookEntryName is the executable the host invokes under the plugin's
// hooks directory.
const HookEntryName = "pretooluse"

// Check is one diagnostic result.
type Check struct {
	Name       string `json:"name"`
	Setting    string `json:"setting,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Resolution string `json:"resolution,omitempty"`
}

// Report is an ordered list of checks.
type Report struct {
	Checks []Check `json:"checks"`
}

// Failed reports whether any check failed outright.
func (r Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// Warnings counts the non-fatal findings.
func (r Report) Warnings() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == StatusWarn {
			n++
		}
	}
	return n
}

// Doctor runs installation diagnostics.
type Doctor struct {
	log *hooklog.Logger
}

// New builds a doctor. log may be nil.
func New(log *hooklog.Logger) *Doctor {
	return &Doctor{log: log}
}

// Run executes every check against the given project directory. Checks are
// ordered from environment outward so the first failure is the one to fix
// first.
func (d *Doctor) Run(projectDir string) Report {
	var r Report
	r.Checks = append(r.Checks, checkPluginRoot()...)
	r.Checks = append(r.Checks, checkProjectLayout(projectDir))
	r.Checks = append(r.Checks, d.checkSettings(projectDir))
	r.Checks = append(r.Checks, d.checkRuleFiles(projectDir)...)
	return r
}

// checkPluginRoot verifies the host-provided plugin location and the hook
// entry inside it. Without the env var the remaining layout checks have
// nothing to look at, so they are skipped.
func checkPluginRoot() []Check {
	root := os.Getenv("CLAUDE_PLUGIN_ROOT")
	if root == "" {
		return []Check{{
			Name:       "plugin-root",
			Setting:    "CLAUDE_PLUGIN_ROOT",
			Status:     StatusWarn,
			Message:    "CLAUDE_PLUGIN_ROOT is not set",
			Resolution: "run through the plugin host, or export CLAUDE_PLUGIN_ROOT to diagnose an installation",
		}}
	}

	checks := []Check{{
		Name:    "plugin-root",
		Setting: "CLAUDE_PLUGIN_ROOT",
		Status:  StatusOK,
		Message: fmt.Sprintf("plugin root is %s", root),
	}}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		checks = append(checks, Check{
			Name:       "plugin-layout",
			Setting:    root,
			Status:     StatusFail,
			Message:    "plugin root is not a directory",
			Resolution: "reinstall the plugin",
		})
		return checks
	}

	hooksDir := filepath.Join(root, "hooks")
	if info, err := os.Stat(hooksDir); err != nil || !info.IsDir() {
		checks = append(checks, Check{
			Name:       "plugin-layout",
			Setting:    hooksDir,
			Status:     StatusFail,
			Message:    "hooks directory is missing",
			Resolution: "reinstall the plugin",
		})
		return checks
	}
	checks = append(checks, Check{
		Name:    "plugin-layout",
		Setting: hooksDir,
		Status:  StatusOK,
		Message: "hooks directory present",
	})

	entry := filepath.Join(hooksDir, HookEntryName)
	info, err = os.Stat(entry)
	switch {
	case err != nil:
		checks = append(checks, Check{
			Name:       "hook-entry",
			Setting:    entry,
			Status:     StatusFail,
			Message:    "hook entry is missing",
			Resolution: "reinstall the plugin",
		})
	case info.Mode().Perm()&0o100 == 0:
		checks = append(checks, Check{
			Name:       "hook-entry",
			Setting:    entry,
			Status:     StatusFail,
			Message:    "hook entry is not executable",
			Resolution: fmt.Sprintf("run: chmod +x %s", entry),
		})
	default:
		checks = append(checks, Check{
			Name:    "hook-entry",
			Setting: entry,
			Status:  StatusOK,
			Message: "hook entry is executable",
		})
	}
	return checks
}

// checkProjectLayout warns when the project has no .claude directory. Not
// an error: the hook runs fine on builtins alone.
func checkProjectLayout(projectDir string) Check {
	dir := filepath.Join(projectDir, ".claude")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Check{
			Name:       "project-layout",
			Setting:    dir,
			Status:     StatusWarn,
			Message:    "project has no .claude directory",
			Resolution: fmt.Sprintf("mkdir %s and add hookify.<name>.local.md rule files", dir),
		}
	}
	return Check{
		Name:    "project-layout",
		Setting: dir,
		Status:  StatusOK,
		Message: ".claude directory present",
	}
}

// checkSettings loads and validates the settings file.
func (d *Doctor) checkSettings(projectDir string) Check {
	path := config.SettingsPath(projectDir)

	if _, err := os.Stat(path); err != nil {
		return Check{
			Name:    "settings",
			Setting: path,
			Status:  StatusOK,
			Message: "no settings file, defaults in effect",
		}
	}

	s, err := config.Load(projectDir)
	if err != nil {
		return Check{
			Name:       "settings",
			Setting:    path,
			Status:     StatusFail,
			Message:    err.Error(),
			Resolution: "fix the YAML or delete the file to fall back to defaults",
		}
	}
	if err := s.Validate(); err != nil {
		return Check{
			Name:       "settings",
			Setting:    path,
			Status:     StatusFail,
			Message:    err.Error(),
			Resolution: "correct the rejected setting",
		}
	}
	return Check{
		Name:    "settings",
		Setting: path,
		Status:  StatusOK,
		Message: "settings file parses and validates",
	}
}

// checkRuleFiles lints every discoverable rule file.
func (d *Doctor) checkRuleFiles(projectDir string) []Check {
	s, err := config.Load(projectDir)
	if err != nil {
		// Reported by checkSettings; lint what defaults can see.
		s = config.DefaultSettings()
	}

	loader := rules.NewLoader(validation.NewValidator(s.ValidatorConfig()), d.log)

	files, err := loader.Discover(projectDir, s.Rules.ExtraDirs)
	if err != nil {
		return []Check{{
			Name:       "rule-files",
			Status:     StatusFail,
			Message:    err.Error(),
			Resolution: "check the configured rule directories",
		}}
	}
	if len(files) == 0 {
		return []Check{{
			Name:    "rule-files",
			Status:  StatusOK,
			Message: "no rule files found, builtin rules only",
		}}
	}

	problems, _ := loader.Lint(projectDir, s.Rules.ExtraDirs)
	if len(problems) == 0 {
		return []Check{{
			Name:    "rule-files",
			Status:  StatusOK,
			Message: fmt.Sprintf("%d rule file(s), all valid", len(files)),
		}}
	}

	checks := make([]Check, 0, len(problems))
	for _, p := range problems {
		msg := p.Message
		for _, f := range p.Findings {
			msg += "; " + f.Message
		}
		checks = append(checks, Check{
			Name:       "rule-files",
			Setting:    p.File,
			Status:     StatusFail,
			Message:    msg,
			Resolution: "fix or remove the rule file",
		})
	}
	return checks
}
