// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports what oxysky build is running, for the version
// command and the User-Agent header.
//
// Release builds set the variables below with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/oxysky/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Builds without them (go install, go run) fall back to the VCS stamp the
// Go toolchain embeds in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the release version.
	Version = "0.1.0-dev"
)

// shortRevision is how many characters of a VCS revision are shown.
const shortRevision = 12

// Info returns "<version> (<commit>, <build time>)".
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Version, commit(), BuildTime)
}

// Full is Info plus the Go toolchain and platform, one per line.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent returns the User-Agent sent to the service, e.g.
// "oxysky/0.1.0-dev (linux/amd64)".
func UserAgent() string {
	return fmt.Sprintf("oxysky/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}

// commit returns the build's revision, suffixed "-dirty" for a modified
// tree. GitCommit wins; otherwise the embedded VCS settings are used.
func commit() string {
	revision, dirty := GitCommit, GitDirty == "true"
	if revision == "unknown" {
		revision, dirty = buildInfoRevision(revision, dirty)
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}

func buildInfoRevision(revision string, dirty bool) (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return revision, dirty
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value[:min(len(setting.Value), shortRevision)]
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return revision, dirty
}
