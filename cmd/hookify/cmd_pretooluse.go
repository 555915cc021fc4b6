package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hookify/internal/audit"
	"hookify/internal/hooks"
)

var pretoolCmd = &cobra.Command{
	Use:   "pretooluse",
	Short: "Evaluate a PreToolUse payload from stdin",
	Long: `Reads one JSON tool invocation from stdin, evaluates it against the
input validators and the loaded rules, and writes one JSON decision
to stdout.

Always exits 0. A broken hook must never block the host.`,
	Args: cobra.NoArgs,
	RunE: runPreToolUse,
}

func runPreToolUse(cmd *cobra.Command, args []string) error {
	var trail *audit.Writer
	if settings.Audit.Enabled {
		path := settings.Audit.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectDir, path)
		}
		w, err := audit.Open(path, logger)
		if err != nil {
			logger.Warning("audit trail unavailable", map[string]any{"path": path, "reason": err.Error()})
		} else {
			trail = w
			defer trail.Close()
		}
	}

	x := &hooks.Executor{
		Settings:   settings,
		ProjectDir: projectDir,
		Log:        logger,
		Audit:      trail,
	}
	if err := x.Run(cmd.Context(), os.Stdin, os.Stdout); err != nil {
		logger.Error("failed to write decision", nil, err)
	}
	return nil
}
