// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
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
	t.Setenv("CHATFEED_HOME", dir)
	for _, k := range []string{
		"CHATFEED_USER", "CHATFEED_USER_NAME", "CHATFEED_DB", "CHATFEED_TRANSCRIPTS",
		"CHATFEED_THEME", "CHATFEED_PAGE_SIZE", "CHATFEED_LOG_LEVEL", "CHATFEED_LOG_SINK",
		"CHATFEED_METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestDefault_FeedTimings(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.Feed.BottomTolerance)
	assert.Equal(t, time.Second, cfg.Feed.PreserveWindow())
	assert.Equal(t, 16*time.Millisecond, cfg.Feed.SettleDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.Feed.PageInterval())
	assert.Equal(t, 30, cfg.Feed.PageSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Feed, cfg.Feed)
	assert.Equal(t, "me", cfg.User.Name)
}

func TestLoad_TOML(t *testing.T) {
	dir := isolate(t)
	data := `
[user]
id = "alice"

[feed]
page_size = 50
settle_delay_ms = 0

[ui]
theme = "light"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.User.ID)
	assert.Equal(t, "alice", cfg.User.Name, "name falls back to id")
	assert.Equal(t, 50, cfg.Feed.PageSize)
	assert.Equal(t, time.Duration(0), cfg.Feed.SettleDelay())
	assert.Equal(t, 1000, cfg.Feed.PreserveWindowMS, "unset keys keep defaults")
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.UI.Markdown)
}

func TestLoad_YAML(t *testing.T) {
	dir := isolate(t)
	data := "user:\n  id: bob\n  name: Bob\nfeed:\n  bottom_tolerance: 3\nui:\n  markdown: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Bob", cfg.User.Name)
	assert.Equal(t, 3, cfg.Feed.BottomTolerance)
	assert.False(t, cfg.UI.Markdown)
}

func TestLoad_TOMLWinsOverYAML(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[user]\nid = \"toml\"\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("user:\n  id: yaml\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "toml", cfg.User.ID)
}

func TestLoad_InvalidConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui]\ntheme = \"neon\"\n[log]\nsink = \"syslog\"\n"), 0600))

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[feed\n"), 0600))

	_, err := Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestSetDefaults_Clamps(t *testing.T) {
	cfg := &Config{
		Feed: FeedConfig{
			BottomTolerance:  -4,
			PreserveWindowMS: 60_000,
			SettleDelayMS:    -1,
			PageSize:         10_000,
			PageIntervalMS:   -1,
		},
		UI: UIConfig{SidebarWidth: 500},
	}
	cfg.SetDefaults()

	assert.Equal(t, 0, cfg.Feed.BottomTolerance)
	assert.Equal(t, maxPreserveMS, cfg.Feed.PreserveWindowMS)
	assert.Equal(t, 0, cfg.Feed.SettleDelayMS)
	assert.Equal(t, maxPageSize, cfg.Feed.PageSize)
	assert.Equal(t, 500, cfg.Feed.PageIntervalMS)
	assert.Equal(t, maxSidebarWidth, cfg.UI.SidebarWidth)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CHATFEED_USER", "carol")
	t.Setenv("CHATFEED_PAGE_SIZE", "12")
	t.Setenv("CHATFEED_TRANSCRIPTS", "/tmp/transcripts")
	t.Setenv("CHATFEED_LOG_SINK", "stderr")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "carol", cfg.User.ID)
	assert.Equal(t, 12, cfg.Feed.PageSize)
	assert.True(t, cfg.Store.Watch)
	assert.Equal(t, "/tmp/transcripts", cfg.Store.TranscriptDir)
	assert.Equal(t, "stderr", cfg.Log.Sink)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CHATFEED_THEME=light\n"), 0600))
	// godotenv does not override variables that are already set.
	require.NoError(t, os.Unsetenv("CHATFEED_THEME"))
	t.Cleanup(func() { os.Unsetenv("CHATFEED_THEME") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.User.ID = "dave"
	cfg.Feed.PageSize = 42
	require.NoError(t, Save(cfg))

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dave", loaded.User.ID)
	assert.Equal(t, 42, loaded.Feed.PageSize)

	yamlPath := filepath.Join(dir, "other.yaml")
	require.NoError(t, SaveYAML(cfg, yamlPath))
	fromYAML, err := LoadFromPath(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 42, fromYAML.Feed.PageSize)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("feed.page_size")
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	require.NoError(t, cfg.Set("feed.page_interval_ms", "250"))
	assert.Equal(t, 250*time.Millisecond, cfg.Feed.PageInterval())

	require.NoError(t, cfg.Set("ui.markdown", "off"))
	assert.False(t, cfg.UI.Markdown)

	require.NoError(t, cfg.Set("user.name", "Eve"))
	assert.Equal(t, "Eve", cfg.User.Name)

	assert.Error(t, cfg.Set("feed.page_size", "many"))
	assert.Error(t, cfg.Set("ui.markdown", "maybe"))
	_, err = cfg.Get("feed.nope")
	assert.Error(t, err)
	_, err = cfg.Get("feed")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestGetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestDatabasePath(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	p, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chatfeed.db"), p)

	cfg.Store.Path = "/data/feed.db"
	p, _ = cfg.DatabasePath()
	assert.Equal(t, "/data/feed.db", p)
}
