package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Stage:          %s\n", cfg.General.Stage)
	bm := cfg.General.BusinessModel
	if bm == "" {
		bm = "not set"
	}
	fmt.Printf("    Business model: %s\n", bm)
	fmt.Printf("    Locale:         %s\n", cfg.General.Locale)
	fmt.Printf("    Currency:       %s\n", cfg.General.CurrencySymbol)
	fmt.Printf("    Store:          %s\n", cfg.General.Store)
	fmt.Println()

	fmt.Println("  [Advisor]")
	if key := config.GetAdvisorAPIKey(cfg); key != "" {
		fmt.Printf("    API key:   %s\n", maskAPIKey(key))
	} else {
		fmt.Println("    API key:   not configured (demo recommendations)")
	}
	if cfg.Advisor.BaseURL != "" {
		fmt.Printf("    Base URL:  %s\n", cfg.Advisor.BaseURL)
	}
	if cfg.Advisor.Model != "" {
		fmt.Printf("    Model:     %s\n", cfg.Advisor.Model)
	}
	fmt.Printf("    Timeout:   %s\n", cfg.AdvisorTimeout())
	fmt.Printf("    Cache TTL: %s\n", cfg.CacheTTL())
	if cfg.Advisor.RedisAddr != "" {
		fmt.Printf("    Redis:     %s\n", cfg.Advisor.RedisAddr)
	}
	fmt.Println()

	fmt.Println("  [Defaults]")
	defaults, err := cfg.SystemDefaults()
	if err != nil {
		fmt.Printf("    %s\n", cli.RenderWarning(err.Error()+" (built-in table in use)"))
	}
	for _, row := range inputRows(cli.NewFormatter(cfg.General.Locale, cfg.General.CurrencySymbol), defaults) {
		fmt.Printf("    %-19s %s\n", row[0]+":", row[1])
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `unitecon setup` to reconfigure.")
	return nil
}
