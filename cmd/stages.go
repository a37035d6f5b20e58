package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/reference"
)

var stagesCmd = &cobra.Command{
	Use:   "stages [stage]",
	Short: "Benchmark metrics for a company stage",
	Long:  "Shows the critical and important metrics for the configured stage, or\nfor every stage with --all.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStages,
}

var flagAllStages bool

func init() {
	stagesCmd.Flags().BoolVar(&flagAllStages, "all", false, "Show every stage")
	rootCmd.AddCommand(stagesCmd)
}

func runStages(_ *cobra.Command, args []string) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	stages := []reference.Stage{e.sess.Stage()}
	switch {
	case flagAllStages:
		stages = reference.Stages
	case len(args) == 1:
		st, err := reference.ParseStage(args[0])
		if err != nil {
			return err
		}
		stages = []reference.Stage{st}
	}

	tables := e.sess.Tables()
	metrics := make([]reference.StageMetrics, len(stages))
	for i, st := range stages {
		metrics[i] = tables.StageMetrics(st)
	}
	if flagJSON {
		return printJSON(metrics)
	}

	for _, sm := range metrics {
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", sm.Label, sm.Horizon)))
		fmt.Println()

		rows := make([][]string, 0, len(sm.Critical)+len(sm.Important)+1)
		for _, m := range sm.Critical {
			rows = append(rows, []string{"critical", m.Name, m.Target})
		}
		if len(sm.Important) > 0 {
			rows = append(rows, []string{"---"})
		}
		for _, m := range sm.Important {
			rows = append(rows, []string{"important", m.Name, m.Target})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Priority", "Metric", "Target"},
			Rows:    rows,
		}))
	}
	fmt.Println()
	return nil
}
