// ABOUTME: Start command runs an interactive assistant session
// ABOUTME: Reads utterances from stdin and optionally serves Prometheus metrics
package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/core"
	"github.com/harper/jarvis/internal/metrics"
	"github.com/harper/jarvis/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	startRequireWake bool
	startMetricsAddr string
)

// NewStartCmd creates the start command
func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start an interactive session",
		Long: `Start an interactive Jarvis session.

Each line typed is one utterance. A line beginning with the wake word
("jarvis" by default) wakes the assistant; anything after the wake word
is handled as a command. Routines with a schedule run in the background.

Examples:
  jarvis start
  jarvis start --require-wake
  jarvis start --metrics-addr :9090`,
		RunE: runStart,
	}

	cmd.Flags().BoolVar(&startRequireWake, "require-wake", false, "Ignore lines that do not follow the wake word")
	cmd.Flags().StringVar(&startMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cmd, cfg); err != nil {
		return err
	}

	src := core.NewLineSource(cmd.InOrStdin(), cfg.WakeWord)
	src.RequireWake = startRequireWake || cfg.RequireWake

	a, err := app.New(cfg, app.Options{Source: src})
	if err != nil {
		return fmt.Errorf("initializing jarvis: %w", err)
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()
	a.Session.OnResponse(func(_, reply string) {
		fmt.Fprintf(out, "Jarvis: %s\n", reply)
	})
	a.Session.OnVisitor(func(v models.Visitor) {
		if !quiet {
			fmt.Fprintf(out, "[visitor] %s (visit %d)\n", v.Name, v.VisitCount)
		}
	})
	a.Session.OnTaskCompleted(func(e models.Execution) {
		if !quiet {
			fmt.Fprintf(out, "[task] %s %s\n", e.Operation, e.State)
		}
	})

	addr := startMetricsAddr
	if addr == "" {
		addr = cfg.MetricsAddr
	}
	if addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(out, "Jarvis is listening. Say %q followed by a command. Ctrl-D to exit.\n", cfg.WakeWord)
	}

	select {
	case <-src.Done():
	case <-ctx.Done():
	}
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
