package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/reference"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap [quarter]",
	Short: "First-year roadmap by quarter",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRoadmap,
}

var visionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Year two and three outlook",
	RunE:  runVision,
}

func init() {
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(visionCmd)
}

func runRoadmap(_ *cobra.Command, args []string) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	tables := e.sess.Tables()
	plans := tables.Roadmap()
	if len(args) == 1 {
		q, err := reference.ParseQuarter(args[0])
		if err != nil {
			return err
		}
		qp, _ := tables.Quarter(q)
		plans = []reference.QuarterPlan{qp}
	}
	if flagJSON {
		return printJSON(plans)
	}

	current, inYear := reference.QuarterOfMonth(max(flagMonth, 1))
	f := e.format
	for _, qp := range plans {
		title := fmt.Sprintf("%s  %s", strings.ToUpper(string(qp.Quarter)), qp.Theme)
		if inYear && qp.Quarter == current {
			title += "  (now)"
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle(title))
		fmt.Println()

		rows := make([][]string, 0, len(qp.Targets))
		for _, tg := range qp.Targets {
			rows = append(rows, []string{cli.HumanizeKey(tg.Name), f.Target(tg.Name, tg.Value)})
		}
		fmt.Print(cli.RenderTable(cli.Table{Title: "Targets", Rows: rows}))
		fmt.Println()

		fmt.Println("  " + cli.RenderMuted("Budget allocation"))
		fmt.Println(cli.RenderHorizontalBar("Product", qp.Allocation.ProductDevelopment, 12, 20))
		fmt.Println(cli.RenderHorizontalBar("Acquisition", qp.Allocation.CustomerAcquisition, 12, 20))
		fmt.Println(cli.RenderHorizontalBar("Operations", qp.Allocation.Operations, 12, 20))
		fmt.Println()

		fmt.Println("  " + cli.RenderMuted("Activities"))
		for _, act := range qp.Activities {
			fmt.Printf("    • %s\n", act)
		}
	}
	fmt.Println()
	return nil
}

func runVision(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	visions := e.sess.Tables().Vision()
	if flagJSON {
		return printJSON(visions)
	}

	targetRows := func(ts []reference.TextTarget) [][]string {
		rows := make([][]string, len(ts))
		for i, tg := range ts {
			rows[i] = []string{cli.HumanizeKey(tg.Name), tg.Value}
		}
		return rows
	}

	for i, v := range visions {
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("YEAR %d  %s", i+2, v.Theme)))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Title: "Financial", Rows: targetRows(v.FinancialTargets)}))
		fmt.Print(cli.RenderTable(cli.Table{Title: "Operational", Rows: targetRows(v.OperationalTargets)}))
		fmt.Println()
		fmt.Println("  " + cli.RenderMuted("Initiatives"))
		for _, in := range v.Initiatives {
			fmt.Printf("    • %s\n", in)
		}
	}
	fmt.Println()
	return nil
}
