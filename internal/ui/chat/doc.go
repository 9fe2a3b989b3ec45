// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the single chat screen of the webquery TUI.

The screen is a Bubble Tea model. It sends each prompt to the generate
endpoint and shows the answer as it streams in.

# Key Components

## Model (model.go)

The Model struct holds the screen state:
  - The message store and the cancel registry for in-flight answers
  - A textarea that grows with its content
  - A viewport that follows the newest message
  - A spinner whose ticks also drive the pending pulse

## Update Loop (update.go)

Every change to the conversation happens in one handler:
  - Enter submits the trimmed draft, Shift+Enter (or Alt+Enter, Ctrl+J) adds a line
  - StreamChunkMsg replaces the answer text with the cumulative text
  - StreamDoneMsg completes, cancels or fails the answer
  - ClearRequestMsg starts the clearing transition; the store empties when it ends

## Streaming (stream.go)

One goroutine per answer calls the Streamer and hands each cumulative text
to the update loop over an unbuffered channel. No chunk is dropped or
merged.

## View Rendering (view.go, topbar.go)

RenderMessages is a pure function of the messages, the clearing flag and
the render options. The top bar carries the theme selector and the Clear
Chat button, both clickable.

# Usage

	client := transport.NewClientWithConfig(&transport.ClientConfig{Endpoint: cfg.Endpoint.URL})
	m := chat.New(chat.Options{Config: cfg, Client: client})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
