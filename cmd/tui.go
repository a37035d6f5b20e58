package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/config"
	"github.com/theirongolddev/unitecon/internal/tui"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// The app imports --file itself so the loading screen can show progress.
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()
	if flagMonth < 0 {
		return fmt.Errorf("--month must be 1 or greater")
	}

	theme.SetActive(e.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(e.sess, tui.Options{
		Files:     flagFiles,
		Month:     flagMonth,
		Config:    e.cfg,
		NeedSetup: !config.Exists(),
		Formatter: e.format,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
