package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hookify/pkg/hooklog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func readTrail(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev), "every trail line must be valid JSON")
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	return events
}

func TestWriterRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail", "hookify-audit.jsonl")
	w, err := Open(path, hooklog.Nop())
	require.NoError(t, err, "missing parent directories are created")
	defer w.Close()

	w.Record(Event{
		RequestID: "req-1",
		SessionID: "sess-1",
		ToolName:  "Bash",
		EventKind: "bash",
		Decision:  DecisionDeny,
		Rules:     []string{"no-drop"},
		Errors:    []string{"no-drop: schema changes go through migrations"},
	})
	w.Record(Event{RequestID: "req-2", EventKind: "file", Decision: DecisionAllow})

	events := readTrail(t, path)
	require.Len(t, events, 2)

	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, DecisionDeny, events[0].Decision)
	assert.Equal(t, []string{"no-drop"}, events[0].Rules)

	ts, err := time.Parse(hooklog.TimeLayout, events[0].Timestamp)
	require.NoError(t, err, "timestamp uses the shared wire layout")
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)

	assert.Equal(t, DecisionAllow, events[1].Decision)
	assert.Empty(t, events[1].Rules)
}

func TestWriterAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookify-audit.jsonl")

	w1, err := Open(path, nil)
	require.NoError(t, err)
	w1.Record(Event{RequestID: "a", EventKind: "bash", Decision: DecisionAllow})
	require.NoError(t, w1.Close())

	w2, err := Open(path, nil)
	require.NoError(t, err)
	w2.Record(Event{RequestID: "b", EventKind: "bash", Decision: DecisionWarn})
	require.NoError(t, w2.Close())

	events := readTrail(t, path)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].RequestID)
	assert.Equal(t, "b", events[1].RequestID)
}

func TestWriterConcurrentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookify-audit.jsonl")
	w, err := Open(path, nil)
	require.NoError(t, err)
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				w.Record(Event{RequestID: "r", EventKind: "bash", Decision: DecisionAllow})
			}
		}()
	}
	wg.Wait()

	events := readTrail(t, path)
	assert.Len(t, events, 200, "no interleaved or torn lines")
}

func TestNilWriterDiscards(t *testing.T) {
	var w *Writer
	assert.NotPanics(t, func() {
		w.Record(Event{RequestID: "x"})
	})
	assert.NoError(t, w.Close())
}

func TestRecordAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookify-audit.jsonl")
	w, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.NotPanics(t, func() {
		w.Record(Event{RequestID: "late"})
	})
}
