// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	savedCommit, savedDirty, savedTime := GitCommit, GitDirty, BuildTime
	t.Cleanup(func() { GitCommit, GitDirty, BuildTime = savedCommit, savedDirty, savedTime })

	GitCommit, GitDirty, BuildTime = "abc1234", "false", "2026-03-01T12:00:00Z"
	if got, want := Info(), Version+" (abc1234, 2026-03-01T12:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "true"
	if !strings.Contains(Info(), "abc1234-dirty") {
		t.Errorf("Info() = %q, want dirty marker", Info())
	}
}

func TestCommit_BuildInfoFallback(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	// With ldflags set, the embedded VCS stamp is ignored.
	GitCommit, GitDirty = "abc1234", "false"
	if got := commit(); got != "abc1234" {
		t.Errorf("commit() = %q, want ldflags value", got)
	}

	// Without them the result is whatever the binary carries, never empty
	// and never longer than a short revision plus the dirty marker.
	GitCommit = "unknown"
	got := commit()
	if got == "" || len(strings.TrimSuffix(got, "-dirty")) > shortRevision {
		t.Errorf("commit() = %q", got)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.HasPrefix(full, Info()) {
		t.Errorf("Full() should start with Info(): %q", full)
	}
	if !strings.Contains(full, runtime.Version()) {
		t.Errorf("Full() missing Go version: %q", full)
	}
}

func TestUserAgent(t *testing.T) {
	want := "oxysky/" + Version + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
	if got := UserAgent(); got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}
