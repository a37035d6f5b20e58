package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/planner"
	"github.com/theirongolddev/unitecon/internal/source"
)

var pmfCmd = &cobra.Command{
	Use:   "pmf <weekly-file>",
	Short: "Product-market-fit score from weekly usage",
	Long: "Reads weekly usage from a YAML file with a `weeks:` list or a JSONL file\n" +
		"with one week per line, and scores activation.",
	Args: cobra.ExactArgs(1),
	RunE: runPMF,
}

func init() {
	rootCmd.AddCommand(pmfCmd)
}

func runPMF(_ *cobra.Command, args []string) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	weeks, err := source.ParseWeeklyFile(args[0])
	if err != nil {
		return err
	}
	res := planner.PMFScore(weeks, e.sess.Tables())
	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PRODUCT-MARKET FIT"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Rows: [][]string{
		{"Weeks", e.format.Number(int64(res.Weeks))},
		{"Activation rate", cli.FormatRatio(res.ActivationRate)},
		{"Score", fmt.Sprintf("%d/100", res.Score)},
		{"Status", cli.HumanizeKey(res.Status)},
	}}))
	fmt.Println()
	fmt.Printf("  %s\n\n", res.Message)
	return nil
}
