// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboardui

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestLogHandlerEnabled(t *testing.T) {
	handler := NewLogHandler(slog.LevelWarn)
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be below a warn handler")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should pass a warn handler")
	}
}

func TestLogHandlerFormat(t *testing.T) {
	handler := NewLogHandler(slog.LevelInfo)
	derived := handler.WithAttrs([]slog.Attr{slog.String("component", "channel")}).
		WithGroup("dial").(*LogHandler)

	record := slog.NewRecord(time.Now(), slog.LevelWarn, "connection lost", 0)
	record.AddAttrs(slog.Int("attempt", 3))

	message := derived.format(record)
	want := "connection lost (component=channel, dial.attempt=3)"
	if message.Summary != want {
		t.Errorf("Summary = %q, want %q", message.Summary, want)
	}
	if message.Level != slog.LevelWarn {
		t.Errorf("Level = %v, want WARN", message.Level)
	}
	if derived.program != handler.program {
		t.Error("derived handlers must share the program pointer")
	}
}

func TestLogHandlerWithoutProgram(t *testing.T) {
	logger := slog.New(NewLogHandler(slog.LevelDebug))
	// Records before SetProgram are dropped without blocking.
	logger.Error("dropped")
}
