// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/siteassist/internal/server"
)

// shutdownTimeout bounds graceful shutdown of the stub service.
const shutdownTimeout = 5 * time.Second

func newServeCmd(st *state) *cobra.Command {
	var (
		addr        string
		latency     time.Duration
		failureRate float64
		rpm         int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stub completion service",
		Long: `Run a stateless completion service that answers from the content
catalog. Point completion.endpoint at it to develop against a real HTTP
round trip:

  siteassist serve --latency 800ms --failure-rate 0.2
  siteassist --endpoint http://127.0.0.1:8787/v1/chat/completions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := st.cfg.Server
			if cmd.Flags().Changed("addr") {
				sc.Addr = addr
			}
			if cmd.Flags().Changed("latency") {
				sc.LatencyMs = int(latency.Milliseconds())
			}
			if cmd.Flags().Changed("failure-rate") {
				sc.FailureRate = failureRate
			}
			if cmd.Flags().Changed("rpm") {
				sc.RequestsPerMinute = rpm
			}
			if sc.FailureRate < 0 || sc.FailureRate > 1 {
				return fmt.Errorf("--failure-rate must be between 0 and 1, got %v", sc.FailureRate)
			}
			st.cfg.Server = sc
			return runServe(cmd, st)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&latency, "latency", 0, "delay before every reply")
	cmd.Flags().Float64Var(&failureRate, "failure-rate", 0, "fraction of requests answered with 503")
	cmd.Flags().IntVar(&rpm, "rpm", 0, "requests per minute per client (0 = unlimited)")
	return cmd
}

func runServe(cmd *cobra.Command, st *state) error {
	logger, closeLog := st.logger(true)
	defer closeLog()

	store, err := st.store()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.startWatcher(ctx, store, logger, nil); err != nil {
		logger.Warn("content hot reload disabled", "error", err)
	}

	sc := st.cfg.Server
	srv := server.New(store, server.Options{
		Addr:              sc.Addr,
		AllowedOrigins:    sc.AllowedOrigins,
		RequestsPerMinute: sc.RequestsPerMinute,
		Latency:           sc.Latency(),
		FailureRate:       sc.FailureRate,
		Logger:            logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	fmt.Fprintf(cmd.OutOrStdout(), "%s listening on http://%s (Ctrl+C to stop)\n",
		SuccessStyle.Render("siteassist"), srv.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
