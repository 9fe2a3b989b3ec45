// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WEBQUERY_HOME", dir)
	for _, k := range []string{
		"WEBQUERY_ENDPOINT", "WEBQUERY_THEME", "WEBQUERY_CLEAR_DELAY_MS",
		"WEBQUERY_REQUEST_TIMEOUT", "WEBQUERY_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	isolate(t)
	cfg := Default()

	assert.Equal(t, "http://127.0.0.1:8000/generate", cfg.Endpoint.URL)
	assert.True(t, cfg.Endpoint.TrackConversation)
	assert.Equal(t, ThemeForest, cfg.UI.Theme)
	assert.Equal(t, 300*time.Millisecond, cfg.ClearDelay())
	assert.Equal(t, 8, cfg.UI.InputMaxLines)
	assert.True(t, cfg.Stream.CancelOnResubmit)
	assert.True(t, cfg.Stream.CancelOnClear)
	assert.Zero(t, cfg.RequestTimeout())
	assert.NoError(t, cfg.Validate())
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Endpoint.URL, cfg.Endpoint.URL)
}

func TestLoad_TOMLKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), `
[endpoint]
url = "http://search.local:9000/generate"

[ui]
theme = "light"
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://search.local:9000/generate", cfg.Endpoint.URL)
	assert.Equal(t, ThemeLight, cfg.UI.Theme)
	assert.Equal(t, 300, cfg.UI.ClearDelayMs)
	assert.True(t, cfg.Stream.CancelOnClear)
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.json"), `{"ui": {"theme": "dark", "clear_delay_ms": 150}}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, cfg.UI.Theme)
	assert.Equal(t, 150*time.Millisecond, cfg.ClearDelay())
}

func TestLoad_InvalidFileFallsBackWithError(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), `[ui]
theme = "neon"
`)

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, ThemeForest, cfg.UI.Theme)

	var verrs ValidateErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("WEBQUERY_ENDPOINT", "https://example.com/generate")
	t.Setenv("WEBQUERY_THEME", "DARK")
	t.Setenv("WEBQUERY_CLEAR_DELAY_MS", "0")
	t.Setenv("WEBQUERY_REQUEST_TIMEOUT", "90")
	t.Setenv("WEBQUERY_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://example.com/generate", cfg.Endpoint.URL)
	assert.Equal(t, ThemeDark, cfg.UI.Theme)
	assert.Zero(t, cfg.UI.ClearDelayMs)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "debug", cfg.Log.Level)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty url", func(c *Config) { c.Endpoint.URL = "" }, "endpoint.url"},
		{"bad scheme", func(c *Config) { c.Endpoint.URL = "ftp://host/generate" }, "endpoint.url"},
		{"no host", func(c *Config) { c.Endpoint.URL = "http:///generate" }, "endpoint.url"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"delay", func(c *Config) { c.UI.ClearDelayMs = -1 }, "ui.clear_delay_ms"},
		{"lines", func(c *Config) { c.UI.InputMaxLines = 0 }, "ui.input_max_lines"},
		{"timeout", func(c *Config) { c.Stream.RequestTimeoutSecs = -5 }, "stream.request_timeout_secs"},
		{"rate", func(c *Config) { c.Stream.MaxRequestsPerMinute = -1 }, "stream.max_requests_per_minute"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "Validate() = %v", err)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestNextTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, NextTheme(ThemeForest))
	assert.Equal(t, ThemeLight, NextTheme(ThemeDark))
	assert.Equal(t, ThemeForest, NextTheme(ThemeLight))
	assert.Equal(t, ThemeForest, NextTheme("unknown"))
}

// =============================================================================
// GET / SET / SAVE
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("ui.theme", "dark"))
	require.NoError(t, cfg.Set("ui.clear_delay_ms", "120"))
	require.NoError(t, cfg.Set("stream.cancel_on_clear", "false"))

	v, err := cfg.Get("ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
	assert.Equal(t, 120, cfg.UI.ClearDelayMs)
	assert.False(t, cfg.Stream.CancelOnClear)

	_, err = cfg.Get("ui.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("ui.theme.x", "y"))
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := Default()
	cfg.UI.Theme = ThemeLight
	cfg.Stream.RequestTimeoutSecs = 30
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, loaded.UI.Theme)
	assert.Equal(t, 30, loaded.Stream.RequestTimeoutSecs)
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	got := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config, err error) {
		if err == nil {
			got <- cfg
		}
	})
	require.NoError(t, err)
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = ThemeDark
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case reloaded := <-got:
		assert.Equal(t, ThemeDark, reloaded.UI.Theme)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

// =============================================================================
// REQUEST CONTEXT
// =============================================================================

func TestRequestContext(t *testing.T) {
	cfg := Default()

	ctx, cancel := cfg.RequestContext(context.Background())
	_, ok := ctx.Deadline()
	assert.False(t, ok, "no deadline without a timeout")
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	cfg.Stream.RequestTimeoutSecs = 30
	start := time.Now()
	ctx, cancel = cfg.RequestContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, start.Add(30*time.Second), deadline, time.Second)
}
