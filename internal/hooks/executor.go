// Package hooks speaks the PreToolUse protocol with the plugin host: one
// JSON object in on stdin, one JSON decision out on stdout. The hook must
// never break the host, so every failure path still writes a decision and
// the command exits zero.
package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"hookify/internal/audit"
	"hookify/internal/config"
	"hookify/internal/rules"
	"hookify/pkg/hooklog"
	"hookify/pkg/validation"
)

// Input is the PreToolUse payload on stdin.
type Input struct {
	SessionID      string    `json:"session_id"`
	TranscriptPath string    `json:"transcript_path"`
	Cwd            string    `json:"cwd"`
	HookEventName  string    `json:"hook_event_name"`
	ToolName       string    `json:"tool_name"`
	ToolInput      ToolInput `json:"tool_input"`
}

// ToolInput carries the tool arguments under evaluation. Only the fields
// relevant to bash and file events are decoded; the host sends more.
type ToolInput struct {
	Command   string      `json:"command"`
	FilePath  string      `json:"file_path"`
	Content   string      `json:"content"`
	NewString string      `json:"new_string"`
	Edits     []EditEntry `json:"edits"`
}

// EditEntry is one edit of a MultiEdit invocation.
type EditEntry struct {
	OldString string `json:"old_string"`
	NewString string `json:"new_string"`
}

// text returns the content a file event introduces: whole-file writes in
// Content, single edits in NewString, MultiEdit batches in Edits.
func (ti ToolInput) text() string {
	switch {
	case ti.Content != "":
		return ti.Content
	case ti.NewString != "":
		return ti.NewString
	}
	var sb strings.Builder
	for _, e := range ti.Edits {
		sb.WriteString(e.NewString)
		sb.WriteByte('\n')
	}
	return sb.String()
}

type hookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason"`
}

// output is the decision object on stdout. The zero value marshals to {},
// the allow decision.
type output struct {
	HookSpecificOutput *hookSpecificOutput `json:"hookSpecificOutput,omitempty"`
	SystemMessage      string              `json:"systemMessage,omitempty"`
}

// Executor evaluates one PreToolUse invocation.
type Executor struct {
	Settings   *config.Settings
	ProjectDir string
	Log        *hooklog.Logger
	Audit      *audit.Writer
}

// Run reads the payload, evaluates it, and writes the decision. The
// returned error only reports a failed stdout write; every evaluation
// failure degrades to an allow decision instead.
func (x *Executor) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) (err error) {
	requestID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			x.Log.Critical("unexpected panic during evaluation", map[string]any{
				"request_id": requestID,
			}, fmt.Errorf("%v", r))
			err = writeOutput(stdout, output{SystemMessage: "hookify: internal error"})
		}
	}()

	var in Input
	if err := json.NewDecoder(stdin).Decode(&in); err != nil {
		x.Log.Error("failed to parse hook input", map[string]any{"request_id": requestID}, err)
		return writeOutput(stdout, output{SystemMessage: "hookify: invalid hook input"})
	}

	kind := eventKind(in.ToolName)
	if kind == "" {
		x.Log.Debug("tool not covered, allowing", map[string]any{
			"request_id": requestID,
			"tool":       in.ToolName,
		})
		return writeOutput(stdout, output{})
	}

	cfg := x.Settings.ValidatorConfig()
	if in.Cwd != "" {
		cfg.WorkspaceRoot = in.Cwd
	}
	v := validation.NewValidator(cfg)

	d := rules.NewEngine(v, x.Log).Evaluate(x.loadRules(v, kind), rules.ToolEvent{
		Kind:     kind,
		Tool:     in.ToolName,
		Command:  in.ToolInput.Command,
		FilePath: in.ToolInput.FilePath,
		Content:  in.ToolInput.text(),
		Cwd:      in.Cwd,
	})

	x.Log.Info("tool evaluated", map[string]any{
		"request_id": requestID,
		"tool":       in.ToolName,
		"event":      kind,
		"block":      d.Block,
		"matched":    len(d.Matched),
	})
	x.record(requestID, in, kind, d)

	return writeOutput(stdout, decisionOutput(d))
}

// loadRules assembles the rule set for one event kind: the project rule
// files first, then the compiled-in rules unless disabled. A rule loading
// failure degrades to whatever loaded so the hook still answers.
func (x *Executor) loadRules(v *validation.Validator, kind string) []rules.Rule {
	var builtin []rules.Rule
	if !x.Settings.Rules.DisableBuiltin {
		builtin = rules.BuiltinFor(kind)
	}

	loaded, err := rules.NewLoader(v, x.Log).Load(x.ProjectDir, kind, x.Settings.Rules.ExtraDirs)
	if err != nil {
		x.Log.Warning("failed to load rule files", map[string]any{"reason": err.Error()})
		return builtin
	}
	return append(loaded, builtin...)
}

func (x *Executor) record(requestID string, in Input, kind string, d rules.Decision) {
	decision := audit.DecisionAllow
	switch {
	case d.Block:
		decision = audit.DecisionDeny
	case len(d.Advisories) > 0:
		decision = audit.DecisionWarn
	}
	x.Audit.Record(audit.Event{
		RequestID: requestID,
		SessionID: in.SessionID,
		ToolName:  in.ToolName,
		EventKind: kind,
		Decision:  decision,
		Rules:     d.Matched,
		Errors:    d.Reasons,
		Warnings:  d.Advisories,
	})
}

func eventKind(tool string) string {
	switch tool {
	case "Bash":
		return rules.EventBash
	case "Edit", "Write", "MultiEdit":
		return rules.EventFile
	default:
		return ""
	}
}

func decisionOutput(d rules.Decision) output {
	var out output
	if d.Block {
		out.HookSpecificOutput = &hookSpecificOutput{
			HookEventName:            "PreToolUse",
			PermissionDecision:       "deny",
			PermissionDecisionReason: strings.Join(d.Reasons, "\n"),
		}
	}
	if len(d.Advisories) > 0 {
		out.SystemMessage = strings.Join(d.Advisories, "\n")
	}
	return out
}

func writeOutput(w io.Writer, out output) error {
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("failed to write hook decision: %w", err)
	}
	return nil
}
