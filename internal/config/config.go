// Package config holds the hookify settings file. Settings live at
// .claude/hookify.yaml inside the project the hook runs against; a missing
// file means defaults, so the hook works in unconfigured projects.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"hookify/pkg/validation"
)

// SettingsFileName is the file looked up under the project's .claude dir.
const SettingsFileName = "hookify.yaml"

// DefaultAuditFileName is the audit trail location relative to .claude.
const DefaultAuditFileName = "hookify-audit.jsonl"

// Settings holds all hookify configuration.
type Settings struct {
	// Input validation limits and the workspace allowlist root
	Validation ValidationSettings `yaml:"validation"`

	// Rule file discovery
	Rules RulesSettings `yaml:"rules"`

	// Diagnostic stream
	Logging LoggingSettings `yaml:"logging"`

	// Decision trail
	Audit AuditSettings `yaml:"audit"`
}

// ValidationSettings bounds the input validators. Zero limits fall back to
// the validation package defaults.
type ValidationSettings struct {
	WorkspaceRoot    string `yaml:"workspace_root"`
	MaxPathLength    int    `yaml:"max_path_length" validate:"min=0"`
	MaxCommandLength int    `yaml:"max_command_length" validate:"min=0"`
	MaxPatternLength int    `yaml:"max_pattern_length" validate:"min=0"`
	MaxTextLength    int    `yaml:"max_text_length" validate:"min=0"`
}

// RulesSettings controls rule file discovery.
type RulesSettings struct {
	// Directories searched for rule files in addition to .claude
	ExtraDirs []string `yaml:"extra_dirs"`

	// Skip the compiled-in anti-pattern rules
	DisableBuiltin bool `yaml:"disable_builtin"`
}

// LoggingSettings configures the diagnostic stream.
type LoggingSettings struct {
	Level string `yaml:"level" validate:"required,oneof=debug info warn warning error critical"`
}

// AuditSettings configures the append-only decision trail.
type AuditSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// DefaultSettings returns the default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Validation: ValidationSettings{
			MaxPathLength:    validation.DefaultMaxPathLength,
			MaxCommandLength: validation.DefaultMaxCommandLength,
			MaxPatternLength: validation.DefaultMaxPatternLength,
			MaxTextLength:    validation.DefaultMaxTextLength,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
		Audit: AuditSettings{
			Enabled: false,
			Path:    filepath.Join(".claude", DefaultAuditFileName),
		},
	}
}

// SettingsPath returns the settings file location for a project dir.
func SettingsPath(projectDir string) string {
	return filepath.Join(projectDir, ".claude", SettingsFileName)
}

// ProjectDir resolves the project directory: CLAUDE_PROJECT_DIR when set,
// otherwise the working directory.
func ProjectDir() string {
	if dir := os.Getenv("CLAUDE_PROJECT_DIR"); dir != "" {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// Load reads the settings for a project. A missing file yields defaults;
// environment overrides apply either way.
func Load(projectDir string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(SettingsPath(projectDir))
	if err != nil {
		if os.IsNotExist(err) {
			s.applyEnvOverrides()
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	s.applyEnvOverrides()
	return s, nil
}

// Save writes the settings under the project's .claude dir.
func (s *Settings) Save(projectDir string) error {
	path := SettingsPath(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	out := append([]byte("# hookify settings\n"), data...)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (s *Settings) applyEnvOverrides() {
	if level := os.Getenv("HOOKIFY_LOG_LEVEL"); level != "" {
		s.Logging.Level = level
	}
	if root := os.Getenv("HOOKIFY_WORKSPACE_ROOT"); root != "" {
		s.Validation.WorkspaceRoot = root
	}
	switch os.Getenv("HOOKIFY_AUDIT") {
	case "1", "true", "yes":
		s.Audit.Enabled = true
	case "0", "false", "no":
		s.Audit.Enabled = false
	}
	if path := os.Getenv("HOOKIFY_AUDIT_PATH"); path != "" {
		s.Audit.Path = path
	}
}

var validate = validator.New()

// Validate checks the settings. Struct tags cover shape and enumerations;
// the workspace root additionally must be absolute so the containment rule
// compares like with like.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if root := s.Validation.WorkspaceRoot; root != "" && !filepath.IsAbs(root) {
		return fmt.Errorf("invalid settings: workspace_root must be absolute, got %q", root)
	}
	return nil
}

// ValidatorConfig bridges the settings into the validation package.
func (s *Settings) ValidatorConfig() validation.Config {
	return validation.Config{
		WorkspaceRoot:    s.Validation.WorkspaceRoot,
		MaxPathLength:    s.Validation.MaxPathLength,
		MaxCommandLength: s.Validation.MaxCommandLength,
		MaxPatternLength: s.Validation.MaxPatternLength,
		MaxTextLength:    s.Validation.MaxTextLength,
	}
}
