package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hookify/internal/doctor"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the hookify installation",
	Long: `Checks the plugin layout, the project settings, and every rule file,
then reports what would keep the hook from working. Exits 1 when any
check fails.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := doctor.New(logger).Run(projectDir)

	if doctorJSON {
		if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
			return err
		}
	} else {
		for _, c := range report.Checks {
			switch c.Status {
			case doctor.StatusOK:
				fmt.Println(styles.OK(c.Message))
			case doctor.StatusWarn:
				fmt.Println(styles.Warn(c.Message))
			case doctor.StatusFail:
				fmt.Println(styles.Fail(c.Message))
			}
			if c.Resolution != "" {
				fmt.Println(styles.Muted.Render("  " + c.Resolution))
			}
		}
	}

	if report.Failed() {
		return errors.New("doctor found problems")
	}
	return nil
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Emit the report as JSON")
}
