package hooklog

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// parseLine decodes a single emitted line as a JSON object.
func parseLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &m), "line must be valid JSON: %q", line)
	return m
}

func lines(buf *bytes.Buffer) []string {
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(out) == 1 && out[0] == "" {
		return nil
	}
	return out
}

type loginError struct{}

func (loginError) Error() string { return "invalid credentials" }

func TestNew(t *testing.T) {
	t.Run("empty component rejected", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
	})

	t.Run("component is fixed", func(t *testing.T) {
		l, err := New("auth")
		require.NoError(t, err)
		assert.Equal(t, "auth", l.Component())
	})

	t.Run("Must panics on error", func(t *testing.T) {
		assert.Panics(t, func() { Must(New("")) })
		assert.NotPanics(t, func() { Must(New("ok")) })
	})
}

func TestLineContract(t *testing.T) {
	var buf bytes.Buffer
	l := Must(New("auth", WithOutput(&buf)))

	l.Error("login failed", map[string]any{"user_id": 123}, nil)

	out := lines(&buf)
	require.Len(t, out, 1)
	m := parseLine(t, out[0])

	assert.Equal(t, "ERROR", m["level"])
	assert.Equal(t, "auth", m["component"])
	assert.Equal(t, "login failed", m["message"])

	ctx, ok := m["context"].(map[string]any)
	require.True(t, ok, "context must be a nested object")
	assert.Equal(t, float64(123), ctx["user_id"])

	ts, ok := m["timestamp"].(string)
	require.True(t, ok)
	assert.Regexp(t, `\.\d{6}Z$`, ts, "UTC with microsecond precision")
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestLevelNames(t *testing.T) {
	var buf bytes.Buffer
	l := Must(New("worker", WithOutput(&buf)))

	l.Debug("d", nil)
	l.Info("i", nil)
	l.Warning("w", nil)
	l.Error("e", nil, nil)
	l.Critical("c", nil, nil)

	out := lines(&buf)
	require.Len(t, out, 5)

	want := []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}
	for i, line := range out {
		m := parseLine(t, line)
		assert.Equal(t, want[i], m["level"])
		assert.Equal(t, "worker", m["component"], "component identical on every record")
	}
}

func TestMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Must(New("quiet", WithOutput(&buf), WithLevel(LevelWarning)))

	l.Debug("dropped", nil)
	l.Info("dropped", nil)
	l.Warning("kept", nil)
	l.Error("kept", nil, nil)

	require.Len(t, lines(&buf), 2)
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	l := Must(New("auth", WithOutput(&buf)))

	l.Error("login failed", nil, loginError{})

	out := lines(&buf)
	require.Len(t, out, 1)
	m := parseLine(t, out[0])

	fault, ok := m["error"].(map[string]any)
	require.True(t, ok, "error must be a nested object")
	assert.Equal(t, "hooklog.loginError", fault["type"])
	assert.Equal(t, "invalid credentials", fault["message"])

	_, hasCtx := m["context"]
	assert.False(t, hasCtx, "no context key when ctx is nil")
}

func TestDegradedContext(t *testing.T) {
	var buf bytes.Buffer
	l := Must(New("engine", WithOutput(&buf)))

	// Channels cannot be serialized; the record must still come out with
	// its message and a serialization note instead of being dropped.
	assert.NotPanics(t, func() {
		l.Info("evaluating", map[string]any{"conn": make(chan int)})
	})

	out := lines(&buf)
	require.Len(t, out, 1)
	m := parseLine(t, out[0])

	assert.Equal(t, "evaluating", m["message"])
	assert.Equal(t, "engine", m["component"])
	note, ok := m["contextError"].(string)
	require.True(t, ok, "degraded record carries a serialization note")
	assert.Contains(t, note, "unsupported type")
	_, hasCtx := m["context"]
	assert.False(t, hasCtx)
}

func TestEmissionOrder(t *testing.T) {
	var buf bytes.Buffer
	l := Must(New("seq", WithOutput(&buf)))

	for _, msg := range []string{"first", "second", "third"} {
		l.Info(msg, nil)
	}

	out := lines(&buf)
	require.Len(t, out, 3)
	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, want, parseLine(t, out[i])["message"])
	}
}

func TestConcurrentEmission(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	l := Must(New("shared", WithOutput(&buf)))

	const workers = 4
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				l.Info("tick", map[string]any{"worker": w, "i": i})
			}
		}(w)
	}
	wg.Wait()

	out := lines(&buf)
	require.Len(t, out, workers*perWorker)
	for _, line := range out {
		m := parseLine(t, line)
		assert.Equal(t, "tick", m["message"])
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Debug("x", nil)
		l.Info("x", nil)
		l.Warning("x", nil)
		l.Error("x", nil, loginError{})
		l.Critical("x", nil, nil)
	})
	assert.NoError(t, l.Sync())
	assert.Equal(t, "", l.Component())
	assert.NotPanics(t, func() { Nop().Error("x", nil, loginError{}) })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarning, false},
		{"Warning", LevelWarning, false},
		{"error", LevelError, false},
		{" critical ", LevelCritical, false},
		{"fatal", LevelInfo, true},
		{"", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
		})
	}
}
