// Command hookify evaluates Claude Code tool invocations against
// markdown-configurable rules before they run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hookify/cmd/hookify/ui"
	"hookify/internal/config"
	"hookify/pkg/hooklog"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

var (
	projectDir string
	logLevel   string

	settings *config.Settings
	logger   *hooklog.Logger
	styles   = ui.NewStyles()
)

var rootCmd = &cobra.Command{
	Use:   "hookify",
	Short: "Markdown-configurable guardrails for tool calls",
	Long: `hookify evaluates tool invocations before they run.

Rules live in .claude/hookify.<name>.local.md files: YAML frontmatter
naming the rule and its regex pattern, a markdown body explaining it.
The pretooluse command wires the evaluation into the PreToolUse hook;
the other commands help you write and debug rules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if projectDir == "" {
			projectDir = config.ProjectDir()
		}

		var err error
		settings, err = config.Load(projectDir)
		if err != nil {
			// A broken settings file must not take the hook down with it.
			// Run on defaults and let doctor point at the file.
			settings = config.DefaultSettings()
			fmt.Fprintln(os.Stderr, styles.Warn("settings unreadable, using defaults: "+err.Error()))
		}
		if logLevel != "" {
			settings.Logging.Level = logLevel
		}

		level, err := hooklog.ParseLevel(settings.Logging.Level)
		if err != nil {
			level = hooklog.LevelInfo
		}
		logger, err = hooklog.New(componentFor(cmd), hooklog.WithLevel(level))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hookify version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", styles.Badge.Render("hookify"), version)
	},
}

// componentFor names the diagnostic log component after the top-level
// command, so "hookify validate path" logs as "validate".
func componentFor(cmd *cobra.Command) string {
	c := cmd
	for c.HasParent() && c.Parent().HasParent() {
		c = c.Parent()
	}
	return c.Name()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Project directory (default: CLAUDE_PROJECT_DIR or the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the diagnostic log level (debug|info|warning|error|critical)")

	rootCmd.AddCommand(pretoolCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
