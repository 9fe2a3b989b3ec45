// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the process-wide structured logger.
//
// The terminal belongs to the chat screen, so log lines go to a file as JSON.
// Until Init is called every call is discarded.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar  = zap.NewNop().Sugar()
	closer func() error
)

// L returns the global sugared logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// SetLevel configures the global log level (debug, info, warn, error).
// Unknown names fall back to info.
func SetLevel(lvl string) {
	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(lvl)))
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	level.SetLevel(parsed)
}

// Level returns the current level name.
func Level() string {
	return level.Level().String()
}

// Init opens path for appending and routes the global logger to it.
// An empty path keeps logging disabled.
func Init(path, lvl string) error {
	SetLevel(lvl)
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)

	mu.Lock()
	prev := closer
	sugar = zap.New(core).Sugar()
	closer = f.Close
	mu.Unlock()

	if prev != nil {
		_ = prev()
	}
	return nil
}

// Close flushes and closes the log file. Logging is disabled afterwards.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	if closer != nil {
		_ = closer()
		closer = nil
	}
	sugar = zap.NewNop().Sugar()
}
