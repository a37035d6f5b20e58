package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/cli"
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Recommendations for the selected month",
	Long: "Asks the configured advisor about the selected month. Without an API key\n" +
		"the built-in demo recommendations are shown.",
	RunE: runAdvise,
}

func init() {
	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	recs, err := e.sess.Recommendations(ctx)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(recs)
	}

	source := "demo"
	if advisor.IsLive(e.sess.Recommender()) {
		source = "live"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RECOMMENDATIONS  %s", cli.FormatMonthLabel(e.sess.Month()))))
	fmt.Printf("  %s\n\n", cli.RenderMuted("advisor: "+source))

	for i, r := range recs {
		fmt.Printf("  %d. %s  %s\n", i+1, r.Title, cli.RenderMuted(fmt.Sprintf("priority %.0f%%", r.Priority*100)))
		fmt.Printf("     %s\n", r.Description)
		for _, act := range r.Actions {
			fmt.Printf("     → %s\n", act)
		}
		fmt.Println()
	}
	return nil
}
