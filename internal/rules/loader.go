package rules

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"hookify/pkg/hooklog"
	"hookify/pkg/validation"
)

// RuleFileGlob matches project rule files under .claude.
const RuleFileGlob = "hookify.*.local.md"

var frontmatterDelim = []byte("---")

// Fenced pattern block in a rule body, stripped from the operator message.
var rePatternFence = regexp.MustCompile("(?s)```pattern\n.*?```\n?")

// Loader discovers and parses rule files. Files that fail to parse or carry
// rejected patterns are skipped with a logged warning so one broken rule
// never disables the hook; Lint reports them instead.
type Loader struct {
	v   *validation.Validator
	log *hooklog.Logger
}

// NewLoader builds a loader. The validator vets rule patterns before they
// are compiled; log may be nil.
func NewLoader(v *validation.Validator, log *hooklog.Logger) *Loader {
	if v == nil {
		v = validation.NewValidator(validation.DefaultConfig())
	}
	return &Loader{v: v, log: log}
}

// Load returns the enabled rules for an event kind, from the project's
// .claude directory plus any extra rule directories. Results are ordered by
// source file name for determinism.
func (l *Loader) Load(projectDir, event string, extraDirs []string) ([]Rule, error) {
	all, err := l.LoadAll(projectDir, extraDirs)
	if err != nil {
		return nil, err
	}
	var out []Rule
	for _, r := range all {
		if r.AppliesTo(event) {
			out = append(out, r)
		}
	}
	return out, nil
}

// LoadAll returns every enabled rule regardless of event kind.
func (l *Loader) LoadAll(projectDir string, extraDirs []string) ([]Rule, error) {
	files, err := l.Discover(projectDir, extraDirs)
	if err != nil {
		return nil, err
	}

	var out []Rule
	for _, path := range files {
		r, err := l.loadFile(path)
		if err != nil {
			l.log.Warning("skipping rule file", map[string]any{
				"file":   path,
				"reason": err.Error(),
			})
			continue
		}
		if !r.Enabled {
			l.log.Debug("rule disabled", map[string]any{"rule": r.Name})
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Discover returns every rule file path the loader would consider, in
// deterministic order.
func (l *Loader) Discover(projectDir string, extraDirs []string) ([]string, error) {
	var files []string

	matches, err := filepath.Glob(filepath.Join(projectDir, ".claude", RuleFileGlob))
	if err != nil {
		return nil, fmt.Errorf("failed to glob rule files: %w", err)
	}
	files = append(files, matches...)

	for _, dir := range extraDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(projectDir, dir)
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
		if err != nil {
			return nil, fmt.Errorf("failed to glob rule dir %s: %w", dir, err)
		}
		files = append(files, matches...)
	}

	sort.Strings(files)
	return files, nil
}

// loadFile parses and fully prepares one rule file.
func (l *Loader) loadFile(path string) (Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to read rule file: %w", err)
	}

	r, err := parseRuleFile(data)
	if err != nil {
		return Rule{}, err
	}
	r.Source = path

	if fs := l.v.ValidateRegexPattern(r.Pattern); fs.HasErrors() {
		return Rule{}, fmt.Errorf("rule %q pattern rejected: %s", r.Name, strings.Join(fs.Errors().Messages(), "; "))
	}
	if err := r.Compile(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// parseRuleFile splits YAML frontmatter from the markdown body and resolves
// the rule pattern. Frontmatter wins when both it and a fenced block carry
// a pattern.
func parseRuleFile(data []byte) (Rule, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return Rule{}, err
	}

	r := Rule{Enabled: true}
	if err := yaml.Unmarshal(front, &r); err != nil {
		return Rule{}, fmt.Errorf("failed to parse rule frontmatter: %w", err)
	}
	if r.Action == "" {
		r.Action = ActionWarn
	}
	if err := r.validateShape(); err != nil {
		return Rule{}, err
	}

	if r.Pattern == "" {
		r.Pattern = extractFencedPattern(body)
	}
	if r.Pattern == "" {
		return Rule{}, fmt.Errorf("rule %q has no pattern", r.Name)
	}

	r.Message = strings.TrimSpace(rePatternFence.ReplaceAllString(string(body), ""))
	if r.Message == "" {
		r.Message = r.Name
	}
	return r, nil
}

// splitFrontmatter expects a leading "---" line, frontmatter, a closing
// "---" line, and the body after it.
func splitFrontmatter(data []byte) (front, body []byte, err error) {
	lines := bytes.SplitAfter(data, []byte("\n"))
	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), frontmatterDelim) {
		return nil, nil, fmt.Errorf("rule file must start with a --- frontmatter block")
	}
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), frontmatterDelim) {
			return bytes.Join(lines[1:i], nil), bytes.Join(lines[i+1:], nil), nil
		}
	}
	return nil, nil, fmt.Errorf("unterminated frontmatter block")
}

// extractFencedPattern walks the body's markdown AST and returns the
// content of the first fenced code block tagged "pattern". Multi-line
// patterns stay readable in a fence where YAML strings would need
// escaping.
func extractFencedPattern(body []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	var pattern string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok || string(fc.Language(body)) != "pattern" {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		for i := 0; i < fc.Lines().Len(); i++ {
			seg := fc.Lines().At(i)
			sb.Write(seg.Value(body))
		}
		pattern = strings.TrimRight(sb.String(), "\n")
		return ast.WalkStop, nil
	})
	return pattern
}
