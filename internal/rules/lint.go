package rules

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"hookify/pkg/validation"
)

// lintParallelism bounds concurrent rule file parsing.
const lintParallelism = 8

// Problem describes one defect found in a rule file.
type Problem struct {
	File     string              `json:"file"`
	Rule     string              `json:"rule,omitempty"`
	Message  string              `json:"message"`
	Findings validation.Findings `json:"findings,omitempty"`
}

func (p Problem) String() string {
	if p.Rule != "" {
		return fmt.Sprintf("%s: rule %q: %s", p.File, p.Rule, p.Message)
	}
	return fmt.Sprintf("%s: %s", p.File, p.Message)
}

// Lint checks every discoverable rule file and reports all defects instead
// of stopping at the first. Files are parsed in parallel; the report stays
// in file order. Disabled rules are still linted. The returned error
// aggregates one error per problem for callers that only need pass/fail.
func (l *Loader) Lint(projectDir string, extraDirs []string) ([]Problem, error) {
	files, err := l.Discover(projectDir, extraDirs)
	if err != nil {
		return nil, err
	}

	perFile := make([][]Problem, len(files))
	parsed := make([]*Rule, len(files))

	var g errgroup.Group
	g.SetLimit(lintParallelism)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			perFile[i], parsed[i] = l.lintFile(path)
			return nil
		})
	}
	_ = g.Wait()

	var problems []Problem
	seen := map[string]string{}
	for i, path := range files {
		problems = append(problems, perFile[i]...)
		r := parsed[i]
		if r == nil {
			continue
		}
		if prev, dup := seen[r.Name]; dup {
			problems = append(problems, Problem{
				File:    path,
				Rule:    r.Name,
				Message: fmt.Sprintf("duplicate rule name, first defined in %s", prev),
			})
		} else {
			seen[r.Name] = path
		}
	}

	var errs error
	for _, p := range problems {
		errs = multierr.Append(errs, fmt.Errorf("%s", p.String()))
	}
	return problems, errs
}

// lintFile checks one file and returns its problems plus the parsed rule
// when parsing got that far.
func (l *Loader) lintFile(path string) ([]Problem, *Rule) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Problem{{File: path, Message: fmt.Sprintf("failed to read rule file: %v", err)}}, nil
	}

	r, err := parseRuleFile(data)
	if err != nil {
		return []Problem{{File: path, Message: err.Error()}}, nil
	}

	var problems []Problem
	if fs := l.v.ValidateRegexPattern(r.Pattern); fs.HasErrors() {
		problems = append(problems, Problem{File: path, Rule: r.Name, Message: "pattern rejected", Findings: fs})
	} else if err := r.Compile(); err != nil {
		problems = append(problems, Problem{File: path, Rule: r.Name, Message: err.Error()})
	}
	return problems, &r
}
