package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/planner"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Six-month customer and MRR outlook",
	RunE:  runForecast,
}

var cohortCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Retention curve, LTV and growth scenarios",
	RunE:  runCohort,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(cohortCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	in, src, err := planInputs(e)
	if err != nil {
		return err
	}
	plan, err := planner.Forecast(in, e.sess.Tables())
	if err != nil {
		return fmt.Errorf("forecast needs a positive target CAC: %w", err)
	}
	if flagJSON {
		return printJSON(plan)
	}

	f := e.format
	fmt.Println()
	fmt.Println(cli.RenderTitle("SIX-MONTH FORECAST"))
	fmt.Println()
	printPlanSource(e.sess.Month(), src)
	fmt.Printf("  The budget buys %s customer(s) at a %s CAC.\n\n",
		cli.RenderCount(f.Number(int64(plan.PotentialCustomers))), f.Money(in.TargetCAC))

	for _, ph := range plan.Phases {
		fmt.Print(cli.RenderTable(cli.Table{
			Title: ph.Label,
			Rows: [][]string{
				{"Target customers", f.Number(int64(ph.TargetCustomers))},
				{"Target MRR", f.Money(ph.TargetMRR)},
			},
		}))
		for _, act := range ph.Activities {
			fmt.Printf("    • %s\n", act)
		}
		fmt.Println()
	}
	return nil
}

func runCohort(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	in, src, err := planInputs(e)
	if err != nil {
		return err
	}
	c := planner.CohortProjection(in, e.sess.BusinessModel(), e.sess.Tables())
	if flagJSON {
		return printJSON(c)
	}

	f := e.format
	bm := string(c.BusinessModel)
	if bm == "" {
		bm = "unspecified"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("COHORT PROJECTION"))
	fmt.Println()
	printPlanSource(e.sess.Month(), src)
	fmt.Printf("  Business model: %s   Estimated LTV: %s\n\n", bm, cli.RenderMoney(f.Money(c.EstimatedLTV)))

	fmt.Println("  " + cli.RenderMuted("Retention"))
	for _, p := range c.Curve {
		fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("Month %d", p.Month), p.Rate, 9, 30))
	}
	fmt.Println()

	rows := make([][]string, len(c.GrowthScenarios))
	for i, g := range c.GrowthScenarios {
		rows[i] = []string{cli.HumanizeKey(g.Name), f.Number(int64(g.Customers6M)), f.Number(int64(g.Customers12M)), g.Assumptions}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Growth scenarios",
		Headers: []string{"Scenario", "6 months", "12 months", "Assumptions"},
		Rows:    rows,
	}))
	fmt.Println()
	for _, ins := range c.Insights {
		fmt.Printf("  • %s\n", ins)
	}
	fmt.Println()
	return nil
}
