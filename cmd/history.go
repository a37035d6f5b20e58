package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/pipeline"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Month-by-month trend of the recorded check-ins",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	trend, err := e.sess.Trend()
	if err != nil {
		return err
	}
	summary := pipeline.Summarize(trend)

	if flagJSON {
		return printJSON(struct {
			Summary model.HistorySummary `json:"summary"`
			Trend   []model.TrendPoint   `json:"trend"`
		}{summary, trend})
	}

	if len(trend) == 0 {
		fmt.Println("\n  No months recorded.")
		fmt.Println("  Import check-ins with --file or record one with `unitecon checkin`.")
		return nil
	}

	f := e.format
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HISTORY  %d month(s)", summary.Months)))
	fmt.Println()

	rows := make([][]string, 0, len(trend))
	for _, p := range trend {
		rows = append(rows, []string{
			cli.FormatMonthLabel(p.Month),
			f.Number(int64(p.Customers)),
			f.Money(p.MRR),
			f.Money(p.CashBalance),
			f.Money(p.BurnRate),
			fmt.Sprintf("%.1f", p.RunwayMonths),
			cli.RenderStatus(p.RunwayStatus),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Customers", "MRR", "Cash", "Burn", "Runway", "Status"},
		Rows:    rows,
	}))
	fmt.Println()

	summaryRows := [][]string{
		{"Latest MRR", f.Money(summary.LatestMRR)},
		{"MRR growth", cli.FormatPercent(summary.MRRGrowth)},
		{"Average burn", f.Money(summary.AvgBurnRate) + "/mo"},
		{"Latest runway", cli.FormatMonths(summary.LatestRunway) + "  " + cli.RenderStatus(summary.LatestStatus)},
	}
	if len(summary.Gaps) > 0 {
		gaps := make([]string, len(summary.Gaps))
		for i, g := range summary.Gaps {
			gaps[i] = fmt.Sprint(g)
		}
		summaryRows = append(summaryRows, []string{"Missing months", cli.RenderWarning(strings.Join(gaps, ", "))})
	}
	fmt.Print(cli.RenderTable(cli.Table{Title: "Summary", Rows: summaryRows}))

	if len(trend) > 1 {
		fmt.Println()
		for _, s := range []struct {
			label string
			pick  func(model.TrendPoint) float64
		}{
			{"Customers", func(p model.TrendPoint) float64 { return float64(p.Customers) }},
			{"MRR", func(p model.TrendPoint) float64 { return p.MRR.InexactFloat64() }},
			{"Cash", func(p model.TrendPoint) float64 { return p.CashBalance.InexactFloat64() }},
			{"Runway", func(p model.TrendPoint) float64 { return p.RunwayMonths }},
		} {
			fmt.Printf("  %-10s %s\n", s.label, cli.RenderSparkline(pipeline.Sparkline(trend, s.pick)))
		}
	}
	fmt.Println()
	return nil
}
