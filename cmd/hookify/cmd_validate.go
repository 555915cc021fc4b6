package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hookify/pkg/validation"
)

// errFindings signals blocking findings; main turns it into exit code 1.
var errFindings = errors.New("validation failed")

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run one input validator against a value",
	Long: `Runs a single validator the way the pretooluse hook would and prints
its findings. Exits 1 when any finding is an error.`,
}

var validatePathCmd = &cobra.Command{
	Use:   "path <path>",
	Short: "Validate a file path against the workspace boundary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportFindings(newValidator().ValidateFilePath(args[0]))
	},
}

var validateCommandCmd = &cobra.Command{
	Use:   "command <command>",
	Short: "Validate a shell command for dangerous constructs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportFindings(newValidator().ValidateBashCommand(args[0]))
	},
}

var validateRegexCmd = &cobra.Command{
	Use:   "regex <pattern>",
	Short: "Validate a rule pattern for safety and syntax",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportFindings(newValidator().ValidateRegexPattern(args[0]))
	},
}

func newValidator() *validation.Validator {
	return validation.NewValidator(settings.ValidatorConfig())
}

func reportFindings(fs validation.Findings) error {
	if validateJSON {
		out := fs
		if out == nil {
			out = validation.Findings{}
		}
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			return err
		}
	} else if len(fs) == 0 {
		fmt.Println(styles.OK("no findings"))
	} else {
		for _, f := range fs {
			fmt.Printf("%s %s %s\n", styles.Severity(string(f.Severity)), f.Message, styles.Muted.Render("("+f.RuleID+")"))
		}
	}

	if fs.HasErrors() {
		return errFindings
	}
	return nil
}

func init() {
	validateCmd.PersistentFlags().BoolVar(&validateJSON, "json", false, "Emit findings as JSON")
	validateCmd.AddCommand(validatePathCmd)
	validateCmd.AddCommand(validateCommandCmd)
	validateCmd.AddCommand(validateRegexCmd)
}
