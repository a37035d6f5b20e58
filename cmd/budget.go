package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/planner"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Marketing budget guidance from the runway band",
	RunE:  runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

// planInputs returns the figures the planners work from: the selected
// month's check-in, or what its form would be pre-filled with.
func planInputs(e *env) (model.Inputs, model.CarrySource, error) {
	pf, _, err := e.sess.Draft()
	return pf.Inputs, pf.Source, err
}

func printPlanSource(month int, src model.CarrySource) {
	if src == model.CarryRecorded {
		return
	}
	fmt.Printf("  %s\n", cli.RenderMuted(fmt.Sprintf("%s not recorded; using %s figures.", cli.FormatMonthLabel(month), src)))
}

func runBudget(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	in, src, err := planInputs(e)
	if err != nil {
		return err
	}
	plan := planner.OptimizeBudget(in, e.sess.Tables())
	if flagJSON {
		return printJSON(plan)
	}

	f := e.format
	fmt.Println()
	fmt.Println(cli.RenderTitle("MARKETING BUDGET"))
	fmt.Println()
	printPlanSource(e.sess.Month(), src)

	fmt.Print(cli.RenderTable(cli.Table{Rows: [][]string{
		{"Burn rate", f.Money(plan.BurnRate) + "/mo"},
		{"Runway", cli.FormatMonths(plan.RunwayMonths)},
		{"Status", cli.RenderStatus(plan.Status)},
		{"---"},
		{"Current budget", f.Money(in.MarketingBudget)},
		{"Suggested share", cli.FormatRatio(plan.SuggestedAllocation)},
		{"Suggested budget", cli.RenderMoney(f.Money(plan.SuggestedMarketingBudget))},
	}}))
	fmt.Println()
	fmt.Printf("  %s\n\n", plan.Recommendation)

	fmt.Println("  " + cli.RenderMuted("Channel split"))
	for _, ch := range plan.Channels {
		fmt.Println(cli.RenderHorizontalBar(ch.Channel, ch.Share, 22, 20))
	}
	fmt.Println()
	return nil
}
