// Package audit appends one JSON line per evaluated tool invocation to a
// local trail file. The trail answers "what did the hook decide, and why"
// after the fact; it is not the diagnostic log. Audit failures are logged
// and swallowed so a full disk or bad path can never affect a decision.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hookify/pkg/hooklog"
)

// Decision outcomes recorded on the trail.
const (
	DecisionAllow = "allow"
	DecisionWarn  = "warn"
	DecisionDeny  = "deny"
)

// Event is one line on the trail.
type Event struct {
	Timestamp string   `json:"timestamp"`
	RequestID string   `json:"request_id"`
	SessionID string   `json:"session_id,omitempty"`
	ToolName  string   `json:"tool_name,omitempty"`
	EventKind string   `json:"event"`
	Decision  string   `json:"decision"`
	Rules     []string `json:"rules,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Writer appends events to a JSONL file. A nil Writer discards everything,
// so callers hold one unconditionally and only open it when auditing is
// enabled.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	log *hooklog.Logger
}

// Open creates or appends to the trail at path, creating parent
// directories as needed. log may be nil.
func Open(path string, log *hooklog.Logger) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit trail: %w", err)
	}
	return &Writer{f: f, log: log}, nil
}

// Record appends one event. The timestamp is filled in when empty. Errors
// never propagate to the caller.
func (w *Writer) Record(ev Event) {
	if w == nil {
		return
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(hooklog.TimeLayout)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		w.log.Warning("failed to encode audit event", map[string]any{"request_id": ev.RequestID})
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return
	}
	if _, err := w.f.Write(append(data, '\n')); err != nil {
		w.log.Warning("failed to append audit event", map[string]any{
			"request_id": ev.RequestID,
			"reason":     err.Error(),
		})
	}
}

// Close releases the trail file. Safe on a nil Writer.
func (w *Writer) Close() error {
	if w == nil || w.f == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.f.Close()
	w.f = nil
	return err
}
