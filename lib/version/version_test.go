// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	saved := [...]string{Version, GitCommit, GitDirty, BuildTime}
	t.Cleanup(func() {
		Version, GitCommit, GitDirty, BuildTime = saved[0], saved[1], saved[2], saved[3]
	})

	Version, GitCommit, BuildTime = "1.2.3", "abc1234", "2026-01-02T03:04:05Z"

	tests := []struct {
		dirty string
		want  string
	}{
		{"false", "1.2.3 (abc1234, 2026-01-02T03:04:05Z)"},
		{"true", "1.2.3 (abc1234-dirty, 2026-01-02T03:04:05Z)"},
	}
	for _, test := range tests {
		GitDirty = test.dirty
		if got := Info(); got != test.want {
			t.Errorf("Info() with GitDirty=%s = %q, want %q", test.dirty, got, test.want)
		}
	}
}

func TestFprint(t *testing.T) {
	var buffer bytes.Buffer
	Fprint(&buffer, "orchdash")
	output := buffer.String()
	if !strings.HasPrefix(output, "orchdash "+Info()) {
		t.Errorf("output %q should start with the binary name and Info()", output)
	}
	if !strings.Contains(output, "Go: ") {
		t.Errorf("output %q should name the Go toolchain", output)
	}
}
