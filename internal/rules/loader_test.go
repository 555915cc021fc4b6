package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookify/pkg/hooklog"
)

const fencedRule = "---\nname: no-print\nevent: file\n---\nRemove debug prints.\n\n```pattern\n(?m)^\\s*print\\(\n```\n"

func writeRule(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func projectWithRules(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeRule(t, filepath.Join(dir, ".claude"), name, content)
	}
	return dir
}

func TestParseRuleFile(t *testing.T) {
	t.Run("frontmatter pattern", func(t *testing.T) {
		r, err := parseRuleFile([]byte(`---
name: no-eval
event: bash
pattern: '\beval\b'
action: block
enabled: true
---
Do not use eval.
`))
		require.NoError(t, err)
		assert.Equal(t, "no-eval", r.Name)
		assert.Equal(t, EventBash, r.Event)
		assert.Equal(t, `\beval\b`, r.Pattern)
		assert.Equal(t, ActionBlock, r.Action)
		assert.True(t, r.Enabled)
		assert.Equal(t, "Do not use eval.", r.Message)
	})

	t.Run("fenced pattern block", func(t *testing.T) {
		r, err := parseRuleFile([]byte(fencedRule))
		require.NoError(t, err)
		assert.Equal(t, `(?m)^\s*print\(`, r.Pattern)
		assert.Equal(t, "Remove debug prints.", r.Message, "pattern fence should not leak into the message")
	})

	t.Run("frontmatter pattern wins over fence", func(t *testing.T) {
		r, err := parseRuleFile([]byte("---\nname: x\npattern: front\n---\n```pattern\nfence\n```\n"))
		require.NoError(t, err)
		assert.Equal(t, "front", r.Pattern)
	})

	t.Run("defaults", func(t *testing.T) {
		r, err := parseRuleFile([]byte("---\nname: x\npattern: foo\n---\n"))
		require.NoError(t, err)
		assert.True(t, r.Enabled, "enabled defaults to true")
		assert.Equal(t, ActionWarn, r.Action, "action defaults to warn")
		assert.Equal(t, "", r.Event, "empty event applies to every kind")
		assert.Equal(t, "x", r.Message, "empty body falls back to the rule name")
	})

	t.Run("explicit disable", func(t *testing.T) {
		r, err := parseRuleFile([]byte("---\nname: x\npattern: foo\nenabled: false\n---\n"))
		require.NoError(t, err)
		assert.False(t, r.Enabled)
	})

	t.Run("rejects", func(t *testing.T) {
		cases := []struct {
			name    string
			content string
			wantErr string
		}{
			{"missing name", "---\npattern: foo\n---\n", "invalid rule frontmatter"},
			{"missing pattern", "---\nname: x\n---\nbody only\n", "has no pattern"},
			{"bad event", "---\nname: x\nevent: commit\npattern: foo\n---\n", "invalid rule frontmatter"},
			{"bad action", "---\nname: x\naction: reject\npattern: foo\n---\n", "invalid rule frontmatter"},
			{"no frontmatter", "just a markdown file\n", "must start with"},
			{"unterminated frontmatter", "---\nname: x\npattern: foo\n", "unterminated"},
			{"malformed yaml", "---\nname: [\n---\n", "frontmatter"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := parseRuleFile([]byte(tc.content))
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			})
		}
	})
}

func TestLoaderLoad(t *testing.T) {
	l := NewLoader(nil, hooklog.Nop())

	t.Run("filters by event and enabled", func(t *testing.T) {
		dir := projectWithRules(t, map[string]string{
			"hookify.any.local.md":  "---\nname: any\npattern: foo\n---\n",
			"hookify.bash.local.md": "---\nname: bash-only\nevent: bash\npattern: foo\n---\n",
			"hookify.file.local.md": "---\nname: file-only\nevent: file\npattern: foo\n---\n",
			"hookify.off.local.md":  "---\nname: off\npattern: foo\nenabled: false\n---\n",
			"unrelated.md":          "---\nname: stray\npattern: foo\n---\n",
		})

		got, err := l.Load(dir, EventBash, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"any", "bash-only"}, ruleNames(got))
	})

	t.Run("skips broken files and keeps the rest", func(t *testing.T) {
		dir := projectWithRules(t, map[string]string{
			"hookify.bad.local.md":    "no frontmatter here\n",
			"hookify.good.local.md":   "---\nname: good\npattern: foo\n---\n",
			"hookify.unsafe.local.md": "---\nname: unsafe\npattern: '(a+)+'\n---\n",
		})

		got, err := l.Load(dir, EventBash, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, ruleNames(got))
	})

	t.Run("sets source and compiles", func(t *testing.T) {
		dir := projectWithRules(t, map[string]string{
			"hookify.x.local.md": "---\nname: x\npattern: ab+c\n---\n",
		})

		got, err := l.Load(dir, EventBash, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, filepath.Join(dir, ".claude", "hookify.x.local.md"), got[0].Source)
		assert.True(t, got[0].Matches("xabbbcx"))
	})

	t.Run("extra dirs", func(t *testing.T) {
		dir := projectWithRules(t, map[string]string{
			"hookify.a.local.md": "---\nname: project\npattern: foo\n---\n",
		})
		writeRule(t, filepath.Join(dir, "team-rules"), "shared.md", "---\nname: shared\npattern: foo\n---\n")

		got, err := l.Load(dir, EventBash, []string{"team-rules"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"project", "shared"}, ruleNames(got))
	})

	t.Run("no rule files", func(t *testing.T) {
		got, err := l.Load(t.TempDir(), EventBash, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLoaderLint(t *testing.T) {
	l := NewLoader(nil, hooklog.Nop())

	t.Run("clean set", func(t *testing.T) {
		dir := projectWithRules(t, map[string]string{
			"hookify.a.local.md": "---\nname: a\npattern: foo\n---\n",
			"hookify.b.local.md": "---\nname: b\npattern: bar\nenabled: false\n---\n",
		})

		problems, err := l.Lint(dir, nil)
		require.NoError(t, err)
		assert.Empty(t, problems)
	})

	t.Run("reports every defect", func(t *testing.T) {
		dir := projectWithRules(t, map[string]string{
			"hookify.broken.local.md": "no frontmatter\n",
			"hookify.dup1.local.md":   "---\nname: same\npattern: foo\n---\n",
			"hookify.dup2.local.md":   "---\nname: same\npattern: bar\n---\n",
			"hookify.unsafe.local.md": "---\nname: unsafe\npattern: '(a+)+'\n---\n",
		})

		problems, err := l.Lint(dir, nil)
		require.Error(t, err)
		require.Len(t, problems, 3)

		byFile := map[string]Problem{}
		for _, p := range problems {
			byFile[filepath.Base(p.File)] = p
		}
		assert.Contains(t, byFile["hookify.broken.local.md"].Message, "must start with")
		assert.Contains(t, byFile["hookify.dup2.local.md"].Message, "duplicate rule name")
		assert.Equal(t, "pattern rejected", byFile["hookify.unsafe.local.md"].Message)
		assert.Equal(t, "regex.nested_quantifier", byFile["hookify.unsafe.local.md"].Findings[0].RuleID)
	})

	t.Run("lints disabled rules too", func(t *testing.T) {
		dir := projectWithRules(t, map[string]string{
			"hookify.off.local.md": "---\nname: off\npattern: '(a+)+'\nenabled: false\n---\n",
		})

		problems, err := l.Lint(dir, nil)
		require.Error(t, err)
		require.Len(t, problems, 1)
		assert.Equal(t, "off", problems[0].Rule)
	})
}

func ruleNames(rs []Rule) []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	return names
}
