// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the webquery command tree.
//
// Commands are built with cobra. The root command loads a dotenv file, the
// configuration and the log file before any subcommand runs.
//
// # Commands
//
//   - tui (default): the full-screen chat
//   - ask: one question, answer streamed to stdout
//   - chat: line-mode chat with history
//   - history: the server-side conversation as a table
//   - config show|path|init: configuration management
//   - version: build information
//
// # Usage
//
//	if err := cli.Execute(); err != nil {
//	    os.Exit(1)
//	}
package cli
