// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/orchdash/orchdash/lib/cli"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Dashboard.URL != "ws://localhost:8080/ws" {
		t.Errorf("expected url=ws://localhost:8080/ws, got %s", cfg.Dashboard.URL)
	}
	if cfg.Dashboard.Encoding != "json" {
		t.Errorf("expected encoding=json, got %s", cfg.Dashboard.Encoding)
	}
	if cfg.Authority.FlushDelay != "200ms" {
		t.Errorf("expected flush_delay=200ms, got %s", cfg.Authority.FlushDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_RequiresEnvVar(t *testing.T) {
	t.Setenv(EnvVar, "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when ORCHDASH_CONFIG not set, got nil")
	}
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected a ToolError, got %T", err)
	}
	if toolErr.Category != cli.CategoryValidation {
		t.Errorf("expected validation category, got %s", toolErr.Category)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "orchdash.yaml", `
dashboard:
  url: ws://orchestrator:9000/ws
  encoding: cbor
  max_backoff: 10s
authority:
  listen: 0.0.0.0:9000
  components:
    - name: web
      delay: 1.5
      revive: true
    - name: worker
      auto_start: false
      start_delay: 250ms
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Dashboard.URL != "ws://orchestrator:9000/ws" || cfg.Dashboard.Encoding != "cbor" {
		t.Errorf("dashboard section not applied: %+v", cfg.Dashboard)
	}
	if cfg.Dashboard.InitialBackoff != "1s" {
		t.Errorf("unset fields should keep defaults, got initial_backoff=%s", cfg.Dashboard.InitialBackoff)
	}
	if got := Duration(cfg.Dashboard.MaxBackoff, 0); got != 10*time.Second {
		t.Errorf("max_backoff = %v, want 10s", got)
	}
	if len(cfg.Authority.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(cfg.Authority.Components))
	}
	web, worker := cfg.Authority.Components[0], cfg.Authority.Components[1]
	if web.Delay != 1.5 || !web.Revive || !web.StartsAutomatically() {
		t.Errorf("web = %+v", web)
	}
	if worker.StartsAutomatically() {
		t.Error("worker has auto_start: false")
	}
	if got := Duration(worker.StartDelay, time.Second); got != 250*time.Millisecond {
		t.Errorf("worker start_delay = %v, want 250ms", got)
	}
	if got := Duration(web.StartDelay, time.Second); got != time.Second {
		t.Errorf("web start_delay = %v, want the 1s fallback", got)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "orchdash.jsonc", `{
  // Trailing commas and comments are fine here.
  "dashboard": {
    "url": "wss://example.test/ws", /* tls */
    "encoding": "json",
  },
  "authority": {"components": [{"name": "db", "delay": 2}]},
}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Dashboard.URL != "wss://example.test/ws" {
		t.Errorf("url = %s", cfg.Dashboard.URL)
	}
	if len(cfg.Authority.Components) != 1 || cfg.Authority.Components[0].Delay != 2 {
		t.Errorf("components = %+v", cfg.Authority.Components)
	}
}

func TestLoadFile_ExpandsVariables(t *testing.T) {
	t.Setenv("ORCHDASH_TEST_HOST", "relay.internal")
	path := writeConfig(t, "orchdash.yaml", `
dashboard:
  url: ws://${ORCHDASH_TEST_HOST}:${ORCHDASH_TEST_PORT:-8080}/ws
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Dashboard.URL != "ws://relay.internal:8080/ws" {
		t.Errorf("url = %s, want ws://relay.internal:8080/ws", cfg.Dashboard.URL)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "dashboard: [", "parsing config"},
		{"bad scheme", "dashboard:\n  url: http://x/ws\n", "scheme"},
		{"bad encoding", "dashboard:\n  encoding: xml\n", "dashboard.encoding"},
		{"zero timeout", "dashboard:\n  read_timeout: 0s\n", "dashboard.read_timeout"},
		{"bad endpoint", "authority:\n  endpoint: ws\n", "authority.endpoint"},
		{"nameless component", "authority:\n  components:\n    - delay: 1\n", "components[0].name"},
		{"negative delay", "authority:\n  components:\n    - name: a\n      delay: -1\n", "components[0].delay"},
		{"infinite delay", "authority:\n  components:\n    - name: a\n      delay: .inf\n", "components[0].delay"},
		{"NaN delay", "authority:\n  components:\n    - name: a\n      delay: .nan\n", "components[0].delay"},
		{"bad log level", "authority:\n  log_level: loud\n", "authority.log_level"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, "orchdash.yaml", test.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Dashboard.URL != Default().Dashboard.URL {
		t.Errorf("expected defaults, got %+v", cfg.Dashboard)
	}

	path := writeConfig(t, "orchdash.yaml", "dashboard:\n  encoding: cbor\n")
	t.Setenv(EnvVar, path)
	cfg, err = LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault via env: %v", err)
	}
	if cfg.Dashboard.Encoding != "cbor" {
		t.Errorf("encoding = %s, want cbor from ORCHDASH_CONFIG", cfg.Dashboard.Encoding)
	}
}
