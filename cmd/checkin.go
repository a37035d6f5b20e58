package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/tui"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Record monthly check-ins interactively",
	Long: "Walks month by month through the check-in form, pre-filled from the\n" +
		"previous month. History is kept for this run only; use --file to start\n" +
		"from earlier check-ins.",
	RunE: runCheckin,
}

func init() {
	rootCmd.AddCommand(checkinCmd)
}

func runCheckin(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	// Start after the last recorded month unless one was asked for.
	if flagMonth == 0 && e.imported != nil && len(e.imported.Recorded) > 0 {
		e.sess.Next()
	}

	for {
		prefill, _, err := e.sess.Draft()
		if err != nil {
			return err
		}
		vals := tui.CheckinValuesFrom(prefill.Inputs)
		form := tui.NewCheckinForm(e.sess.Month(), prefill.Source, vals)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		in, err := vals.Inputs()
		if err != nil {
			return err
		}
		e.sess.Edit(in)
		if _, err := e.sess.Submit(); err != nil {
			var dup *model.DuplicateMonthError
			if !errors.As(err, &dup) {
				return err
			}
			fmt.Printf("\n  %s is already recorded, nothing saved.\n", cli.FormatMonthLabel(dup.Month))
		} else {
			report, err := e.sess.Report()
			if err != nil {
				return err
			}
			if flagJSON {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				printReport(e.format, report)
			}
		}

		more := true
		err = huh.NewConfirm().
			Title(fmt.Sprintf("Record %s?", cli.FormatMonthLabel(e.sess.Month()+1))).
			Affirmative("Yes").
			Negative("Done").
			Value(&more).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !more || err != nil {
			return nil
		}
		e.sess.Next()
	}
}
