// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// orchdash-fake is a stand-in authority for developing and
// demonstrating the dashboard. It serves the websocket endpoint and
// drives the component list with simulated process lifecycles:
// delayed launches, STARTING and STOPPING phases, and revive after a
// stop or a failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/orchdash/orchdash/lib/authority"
	"github.com/orchdash/orchdash/lib/cli"
	"github.com/orchdash/orchdash/lib/clock"
	"github.com/orchdash/orchdash/lib/config"
	"github.com/orchdash/orchdash/lib/simulate"
	"github.com/orchdash/orchdash/lib/version"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var listen string

	flagSet := pflag.NewFlagSet("orchdash-fake", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "config file, YAML or JSONC (default: $"+config.EnvVar+", then built-in defaults)")
	flagSet.StringVar(&listen, "listen", "", "HTTP listen address (overrides authority.listen)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("orchdash-fake")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return cli.Validation("%v", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Authority.Listen = listen
	}

	level, _ := cli.ParseLevel(cfg.Authority.LogLevel)
	logger := cli.NewLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := simulate.New(specsFromConfig(cfg.Authority.Components), clock.Real(), logger.With("component", "simulate"))
	defer controller.Close()

	server := authority.New(authority.Config{
		Endpoint:   cfg.Authority.Endpoint,
		FlushDelay: config.Duration(cfg.Authority.FlushDelay, 0),
	}, controller, logger.With("component", "authority"))
	defer server.Close()

	controller.OnChange(server.Changed)
	controller.Launch()

	httpServer := &http.Server{
		Addr:              cfg.Authority.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- httpServer.ListenAndServe()
	}()

	logger.Info("authority running",
		"listen", cfg.Authority.Listen,
		"endpoint", cfg.Authority.Endpoint,
		"components", controller.Len(),
	)

	select {
	case err := <-serveDone:
		if !errors.Is(err, http.ErrServerClosed) {
			return cli.Transient("serving %s: %w", cfg.Authority.Listen, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	// Websocket connections are hijacked, so Shutdown does not wait
	// for them; server.Close sends them close frames.
	server.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `orchdash-fake: simulated orchestrator authority.

Serves the component list on the websocket endpoint (default /ws),
the current state as JSON on /state, and a liveness probe on
/healthz. Components come from authority.components in the config
file; without any, a small demo set is used.

Usage:
  orchdash-fake [flags]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
