package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"hookify/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and lint the loaded rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every rule the hook would apply",
	RunE:  runRulesList,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Render a rule's explanation",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

var lintWatch bool

var rulesLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check every rule file and report all problems",
	RunE:  runRulesLint,
}

// loadedRules assembles the same rule set the pretooluse hook evaluates:
// project rules first, builtins after.
func loadedRules() ([]rules.Rule, error) {
	loader := rules.NewLoader(newValidator(), logger)
	set, err := loader.LoadAll(projectDir, settings.Rules.ExtraDirs)
	if err != nil {
		return nil, err
	}
	if !settings.Rules.DisableBuiltin {
		set = append(set, rules.Builtin()...)
	}
	return set, nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	set, err := loadedRules()
	if err != nil {
		return err
	}
	if len(set) == 0 {
		fmt.Println(styles.Muted.Render("no rules loaded"))
		return nil
	}

	fmt.Println(styles.Title.Render(fmt.Sprintf("%-28s %-5s %-6s %s", "NAME", "EVENT", "ACTION", "SOURCE")))
	for _, r := range set {
		event := r.Event
		if event == "" {
			event = "any"
		}
		fmt.Printf("%-28s %-5s %-6s %s\n", r.Name, event, r.Action, styles.Muted.Render(displaySource(r.Source)))
	}
	return nil
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	set, err := loadedRules()
	if err != nil {
		return err
	}
	for _, r := range set {
		if r.Name != args[0] {
			continue
		}

		event := r.Event
		if event == "" {
			event = "any"
		}
		fmt.Println(styles.Muted.Render(fmt.Sprintf("event: %s  action: %s  source: %s", event, r.Action, displaySource(r.Source))))

		md := fmt.Sprintf("# %s\n\n%s\n\n```\n%s\n```\n", r.Name, r.Message, r.Pattern)
		rendered, err := glamour.Render(md, "auto")
		if err != nil {
			fmt.Println(md)
			return nil
		}
		fmt.Print(rendered)
		return nil
	}
	return fmt.Errorf("no rule named %q", args[0])
}

func runRulesLint(cmd *cobra.Command, args []string) error {
	problems := lintAndPrint()
	if !lintWatch {
		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		return nil
	}

	w, err := rules.NewWatcher(logger, rules.DefaultDebounce, func() { lintAndPrint() })
	if err != nil {
		return err
	}
	w.Watch(watchDirs()...)
	w.Start(cmd.Context())
	defer w.Stop()

	fmt.Println(styles.Muted.Render("watching rule files, Ctrl+C to stop"))
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	return nil
}

func lintAndPrint() int {
	loader := rules.NewLoader(newValidator(), logger)
	problems, _ := loader.Lint(projectDir, settings.Rules.ExtraDirs)
	if len(problems) == 0 {
		files, _ := loader.Discover(projectDir, settings.Rules.ExtraDirs)
		fmt.Println(styles.OK(fmt.Sprintf("%d rule file(s), no problems", len(files))))
		return 0
	}

	for _, p := range problems {
		if p.Rule != "" {
			fmt.Println(styles.Fail(fmt.Sprintf("%s: rule %q: %s", displaySource(p.File), p.Rule, p.Message)))
		} else {
			fmt.Println(styles.Fail(fmt.Sprintf("%s: %s", displaySource(p.File), p.Message)))
		}
		for _, f := range p.Findings {
			fmt.Printf("    %s %s\n", styles.Severity(string(f.Severity)), f.Message)
		}
	}
	return len(problems)
}

// watchDirs lists every directory rule files are discovered in.
func watchDirs() []string {
	dirs := []string{filepath.Join(projectDir, ".claude")}
	for _, d := range settings.Rules.ExtraDirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(projectDir, d)
		}
		dirs = append(dirs, d)
	}
	return dirs
}

// displaySource shortens rule file paths relative to the project.
func displaySource(src string) string {
	if src == rules.SourceBuiltin {
		return src
	}
	if rel, err := filepath.Rel(projectDir, src); err == nil {
		return rel
	}
	return src
}

func init() {
	rulesLintCmd.Flags().BoolVar(&lintWatch, "watch", false, "Re-lint whenever a rule file changes")
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesLintCmd)
}
