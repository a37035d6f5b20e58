package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/model"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Burn, runway and unit economics for the selected month",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	report, err := e.sess.Report()
	if errors.Is(err, model.ErrMonthNotRecorded) {
		return printNotRecorded(e)
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(report)
	}
	printReport(e.format, report)
	return nil
}

// printNotRecorded shows what the check-in form would be pre-filled with.
func printNotRecorded(e *env) error {
	prefill, _, err := e.sess.Draft()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(prefill)
	}

	fmt.Println()
	fmt.Printf("  %s has no check-in yet.\n", cli.FormatMonthLabel(prefill.Month))
	fmt.Println("  Record one with `unitecon checkin` or import files with --file.")
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title: fmt.Sprintf("Pre-filled from %s", prefill.Source),
		Rows:  inputRows(e.format, prefill.Inputs),
	}))
	return nil
}

func printReport(f *cli.Formatter, r model.MonthReport) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("UNIT ECONOMICS  %s", cli.FormatMonthLabel(r.Month))))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{Title: "Check-in", Rows: inputRows(f, r.Current)}))
	fmt.Println()

	potential := "n/a (set a target CAC)"
	if r.PotentialCustomers != nil {
		potential = f.Number(int64(*r.PotentialCustomers))
	}
	rows := [][]string{
		{"Burn rate", f.Money(r.BurnRate) + "/mo"},
		{"Runway", cli.FormatMonths(r.RunwayMonths)},
		{"Status", cli.RenderStatus(r.RunwayStatus)},
		{"---"},
		{"Estimated CAC", f.Money(r.EstimatedCAC)},
		{"Customers the budget buys", potential},
		{"Estimated LTV", f.Money(r.EstimatedLTV)},
		{"LTV:CAC", fmt.Sprintf("%.1fx", r.LTVToCAC)},
	}
	fmt.Print(cli.RenderTable(cli.Table{Title: "Derived", Rows: rows}))

	if c := r.Comparison; c != nil {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("vs %s", cli.FormatMonthLabel(c.PreviousMonth)),
			Headers: []string{"Metric", "Previous", "Change", "%"},
			Rows: [][]string{
				{"Customers", f.Number(int64(c.PreviousCustomers)), cli.FormatCountDelta(c.CustomerDelta), cli.FormatPercent(c.CustomerPercent)},
				{"MRR", f.Money(c.MRR.Previous), f.MoneyDelta(c.MRR.Amount), cli.FormatPercent(c.MRR.Percent)},
				{"Cash", f.Money(c.CashBalance.Previous), f.MoneyDelta(c.CashBalance.Amount), cli.FormatPercent(c.CashBalance.Percent)},
			},
		}))
	}
	fmt.Println()
}

func inputRows(f *cli.Formatter, in model.Inputs) [][]string {
	return [][]string{
		{"Marketing budget", f.Money(in.MarketingBudget)},
		{"Cash balance", f.Money(in.CashBalance)},
		{"Subscription price", f.Money(in.SubscriptionPrice)},
		{"Customers", f.Number(int64(in.CurrentCustomers))},
		{"MRR", f.Money(in.CurrentMRR)},
		{"Target CAC", f.Money(in.TargetCAC)},
		{"Team size", f.Number(int64(in.TeamSize))},
		{"Expected churn", cli.FormatRatio(in.ExpectedChurnRate)},
	}
}
