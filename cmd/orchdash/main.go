// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// orchdash is the terminal dashboard for an orchestrator. It mirrors
// the authority's component list over a websocket and sends start,
// stop, and revive commands back. The connection retries with backoff
// for as long as the dashboard runs; the last known state stays on
// screen while it is down.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/orchdash/orchdash/lib/channel"
	"github.com/orchdash/orchdash/lib/cli"
	"github.com/orchdash/orchdash/lib/codec"
	"github.com/orchdash/orchdash/lib/config"
	"github.com/orchdash/orchdash/lib/dashboard"
	"github.com/orchdash/orchdash/lib/dashboardui"
	"github.com/orchdash/orchdash/lib/version"
)

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
	var endpoint string
	var encoding string
	var logOutput string

	flagSet := pflag.NewFlagSet("orchdash", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "config file, YAML or JSONC (default: $"+config.EnvVar+", then built-in defaults)")
	flagSet.StringVar(&endpoint, "url", "", "authority websocket URL (overrides dashboard.url)")
	flagSet.StringVar(&encoding, "encoding", "", "frame encoding, json or cbor (overrides dashboard.encoding)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("orchdash")
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
	if args := flagSet.Args(); len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if endpoint != "" || encoding != "" {
		if endpoint != "" {
			cfg.Dashboard.URL = endpoint
		}
		if encoding != "" {
			cfg.Dashboard.Encoding = encoding
		}
		if err := cfg.Validate(); err != nil {
			return cli.Validation("invalid flags: %v", err)
		}
	}

	level, _ := cli.ParseLevel(cfg.Dashboard.LogLevel)
	frameCodec, _ := codec.ByName(cfg.Dashboard.Encoding)

	// Writing to stderr would corrupt the alternate screen, so
	// warnings go to the status bar and everything else optionally to
	// a file.
	tuiHandler := dashboardui.NewLogHandler(slog.LevelWarn)
	var handler slog.Handler = tuiHandler
	if logOutput != "" {
		file, err := os.Create(logOutput)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", logOutput, err)
		}
		defer file.Close()
		handler = fanoutHandler{tuiHandler, cli.NewJSONLogger(file, level).Handler()}
	}
	logger := slog.New(handler)

	conn := channel.New(channel.Config{
		URL:            cfg.Dashboard.URL,
		Codec:          frameCodec,
		InitialBackoff: config.Duration(cfg.Dashboard.InitialBackoff, 0),
		MaxBackoff:     config.Duration(cfg.Dashboard.MaxBackoff, 0),
		PingInterval:   config.Duration(cfg.Dashboard.PingInterval, 0),
		ReadTimeout:    config.Duration(cfg.Dashboard.ReadTimeout, 0),
		WriteTimeout:   config.Duration(cfg.Dashboard.WriteTimeout, 0),
	}, logger.With("component", "channel"))

	mailbox := dashboard.NewMailbox()
	conn.OnState(mailbox.Put)

	app := dashboard.NewApp(conn, logger.With("component", "dashboard"))
	defer app.Close()

	model := dashboardui.NewModel(app, mailbox, cfg.Dashboard.URL, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	tuiHandler.SetProgram(program)

	// Send waits for the event loop, which is running by the time
	// the first dial completes, and returns at once after it exits.
	conn.OnConnState(func(state channel.ConnState) {
		program.Send(dashboardui.ConnStateMsg{State: state})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := conn.Open(ctx); err != nil {
		return cli.Internal("opening channel: %w", err)
	}
	defer conn.Close()

	if _, err := program.Run(); err != nil {
		return cli.Internal("terminal UI: %w", err)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `orchdash: terminal dashboard for orchestrator components.

Connects to the authority's websocket endpoint and shows every
component with its delay, revive flag, and status. Keys act on the
selected row:

  j/k      move the selection
  x        stop the component
  enter    start the component
  space    toggle revive
  q        quit

Usage:
  orchdash [flags]

Examples:
  # Connect to a local authority with the default settings
  orchdash

  # Use a config file and the binary frame encoding
  orchdash --config orchdash.yaml --encoding cbor

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
