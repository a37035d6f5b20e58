package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/unitecon/internal/server"
)

var (
	flagServeAddr         string
	flagServeEventsBuffer int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over a local JSON API",
	Long: "Runs in the foreground until interrupted. Check-ins posted to\n" +
		"/v1/snapshots are kept for the life of the process.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := flagServeAddr
	if addr == "" {
		addr = e.cfg.Server.Addr
	}
	svc := server.New(e.sess, server.Config{
		Addr:         addr,
		EventsBuffer: flagServeEventsBuffer,
	})

	fmt.Printf("  unitecon listening on http://%s\n", addr)
	fmt.Printf("  Session %s, stage %s\n", e.sess.ID(), e.sess.Stage())
	fmt.Println("  Stop with Ctrl+C")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
