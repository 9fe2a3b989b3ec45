// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// =============================================================================
// STREAM READER
// =============================================================================

// ChunkFunc receives the full text decoded so far. It is called once per
// decoded increment, in order, from the goroutine running Send.
type ChunkFunc func(cumulative string)

// readBufferSize is the size of a single body read.
const readBufferSize = 4096

// StreamReader decodes a raw UTF-8 text stream and accumulates it.
// A multi-byte character split across reads is held back until complete.
type StreamReader struct {
	src  io.Reader
	buf  []byte
	text strings.Builder
}

// NewStreamReader wraps r with an incremental UTF-8 decoder.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		src: unicode.UTF8.NewDecoder().Reader(r),
		buf: make([]byte, readBufferSize),
	}
}

// Process reads until EOF, calling onChunk with the cumulative text after
// every read that produced output. It returns nil at EOF.
func (s *StreamReader) Process(ctx context.Context, onChunk ChunkFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return requestError(ctx, KindStream, "stream interrupted", err)
		}

		n, err := s.src.Read(s.buf)
		if n > 0 {
			s.text.Write(s.buf[:n])
			if onChunk != nil {
				onChunk(s.text.String())
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return requestError(ctx, KindStream, "stream interrupted", err)
		}
	}
}

// Text returns everything decoded so far.
func (s *StreamReader) Text() string {
	return s.text.String()
}
