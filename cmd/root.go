// Package cmd implements the unitecon CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/config"
	"github.com/theirongolddev/unitecon/internal/logging"
	"github.com/theirongolddev/unitecon/internal/pipeline"
	"github.com/theirongolddev/unitecon/internal/session"
	"github.com/theirongolddev/unitecon/internal/store"
)

var (
	flagFiles   []string
	flagStage   string
	flagMonth   int
	flagJSON    bool
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "unitecon",
	Short: "Unit economics dashboard for an early-stage SaaS",
	Long: "Record monthly check-ins and see burn, runway, CAC, LTV and stage guidance.\n" +
		"History lives for one session; seed it with --file.",
	SilenceUsage: true,
	RunE:         runReport,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&flagFiles, "file", "f", nil, "Check-in file or directory to import (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagStage, "stage", "", "Company stage: pre_seed, seed or scale (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&flagMonth, "month", "m", 0, "Month to show (default: last recorded)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
}

// env is everything a command needs: config, a session over a fresh
// store, and the formatter for the configured locale.
type env struct {
	cfg      config.Config
	sess     *session.Session
	format   *cli.Formatter
	imported *pipeline.ImportResult
	closers  []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			slog.Debug("close failed", "err", err)
		}
	}
}

// loadEnv is the shared setup path used by all commands. With doImport the
// --file paths are recorded before it returns and the selected month is
// moved to --month or the last recorded one.
func loadEnv(doImport bool) (*env, error) {
	if flagVerbose {
		logging.SetupWithLevel(slog.LevelDebug)
	} else {
		logging.Setup()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	profile, err := config.ResolveProfile(cfg, flagStage)
	if err != nil {
		return nil, err
	}
	defaults, err := cfg.SystemDefaults()
	if err != nil {
		return nil, fmt.Errorf("config [defaults]: %w", err)
	}

	st, err := store.Open(cfg.General.Store, store.Options{Defaults: &defaults})
	if err != nil {
		return nil, err
	}
	e := &env{
		cfg:     cfg,
		format:  cli.NewFormatter(cfg.General.Locale, cfg.General.CurrencySymbol),
		closers: []func() error{st.Close},
	}

	e.sess = session.New(st, session.Options{
		Stage:         profile.Stage,
		BusinessModel: profile.BusinessModel,
		Recommender:   newRecommender(cfg, e),
	})

	if doImport {
		if err := e.importFiles(); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

// newRecommender picks the advisor for cfg. A configured redis that does
// not answer falls back to the in-process cache.
func newRecommender(cfg config.Config, e *env) advisor.Recommender {
	var cache advisor.Cache = advisor.NewMemoryCache()
	if addr := cfg.Advisor.RedisAddr; addr != "" {
		rc := advisor.NewRedisCache(addr)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, caching recommendations in memory", "addr", addr, "err", err)
			_ = rc.Close()
		} else {
			cache = rc
			e.closers = append(e.closers, rc.Close)
		}
	}
	return advisor.New(advisor.Options{
		APIKey: config.GetAdvisorAPIKey(cfg),
		Client: advisor.ClientOptions{
			BaseURL: cfg.Advisor.BaseURL,
			Model:   cfg.Advisor.Model,
			Timeout: cfg.AdvisorTimeout(),
		},
		Cache: cache,
		TTL:   cfg.CacheTTL(),
	})
}

func (e *env) importFiles() error {
	if len(flagFiles) > 0 {
		progressFn := func(current, total int) {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
			}
		}
		res, err := pipeline.Import(e.sess.Store(), flagFiles, progressFn)
		if err != nil {
			return err
		}
		e.imported = res
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "\r  Imported %d month(s) from %d file(s)    \n", len(res.Recorded), res.ParsedFiles)
			printImportProblems(res)
		}
	}

	month := flagMonth
	if month == 0 {
		snaps, err := e.sess.Store().All()
		if err != nil {
			return err
		}
		month = 1
		if len(snaps) > 0 {
			month = snaps[len(snaps)-1].Month
		}
	}
	return e.sess.Select(month)
}

func printImportProblems(res *pipeline.ImportResult) {
	if res.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d file(s) could not be read\n", res.FileErrors)
	}
	if res.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed line(s) skipped\n", res.ParseErrors)
	}
	for _, m := range res.Duplicates {
		fmt.Fprintf(os.Stderr, "  %s already recorded, later entry skipped\n", cli.FormatMonthLabel(m))
	}
	for _, r := range res.Invalid {
		fmt.Fprintf(os.Stderr, "  %s:%d %s rejected: %v\n", r.Path, r.Line, cli.FormatMonthLabel(r.Month), r.Err)
	}
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
