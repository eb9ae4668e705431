// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-core-stack/estimate-gateway/pkg/proxy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the estimate API and pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	handler, err := proxy.New(newService())
	if err != nil {
		return fmt.Errorf("construct gateway: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       cfg.ServerReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	event := log.Info().Str("listen_addr", cfg.ListenAddr)
	if cfg.RegisterFlowURL != nil {
		event = event.Str("register_flow_host", cfg.RegisterFlowURL.Host)
	}
	if cfg.ListFlowURL != nil {
		event = event.Str("list_flow_host", cfg.ListFlowURL.Host)
	}
	event.Msg("starting estimate gateway")

	if cfg.RegisterFlowURL == nil || cfg.ListFlowURL == nil {
		log.Warn().Msg("a flow URL is not configured; the matching endpoint will answer with a configuration error")
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	return waitForShutdown(ctx, server, serveErr, cfg.GracefulShutdownTimeout)
}

func waitForShutdown(ctx context.Context, srv *http.Server, serveErr <-chan error, timeout time.Duration) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			return fmt.Errorf("gateway server exited unexpectedly: %w", err)
		}
		return nil
	case <-stop:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down estimate gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed; forcing close")
		if closeErr := srv.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}

	log.Info().Msg("gateway stopped")
	return nil
}
