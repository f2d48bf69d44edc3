// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for oxysky.
//
// The central type is [Command]: a named node with optional
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function.
// [Command.Execute] handles flag parsing, subcommand routing, and help
// output. Unknown subcommands and flags get a "did you mean" suggestion
// based on Levenshtein distance (suggest.go).
//
// Shared plumbing for the commands package:
//
//   - [Settings]: the --config flag, configuration loading, and
//     construction of the atproto client and logger
//   - [SessionStore]: the saved session file, optionally sealed with age
//   - [Printer] and [WriteJSON]: styled human output and highlighted JSON
//   - [ToolError] / [ExitError]: categorized errors and exit codes
package cli
