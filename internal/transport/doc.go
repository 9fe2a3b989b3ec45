// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport talks to the streaming generate endpoint.
//
// A prompt is POSTed as JSON and the answer arrives as a raw UTF-8 text body
// that is read incrementally until EOF:
//
//	client := transport.NewClientWithConfig(transport.DefaultConfig())
//	err := client.Send(ctx, "what changed in go 1.24?", func(text string) {
//	    fmt.Print("\r", text)
//	})
//
// Every callback receives the cumulative text, never a delta. Failures are
// reported as *TransportError; a non-2xx response renders as
// "HTTP error! Status: <code> - <detail>".
//
// The client also tracks the server's conversation ID and can fetch or
// delete the conversation it names.
package transport
