package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallback(t *testing.T) {
	t.Setenv("CRS_TEST_KEY", "  ")
	assert.Equal(t, "fallback", Get("CRS_TEST_KEY", "fallback"))

	t.Setenv("CRS_TEST_KEY", " value ")
	assert.Equal(t, "value", Get("CRS_TEST_KEY", "fallback"))
}

func TestGetDuration(t *testing.T) {
	d, err := GetDuration("CRS_TEST_DUR", 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, d)

	t.Setenv("CRS_TEST_DUR", "250ms")
	d, err = GetDuration("CRS_TEST_DUR", 0)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	t.Setenv("CRS_TEST_DUR", "soon")
	_, err = GetDuration("CRS_TEST_DUR", 0)
	assert.Error(t, err)

	t.Setenv("CRS_TEST_DUR", "-1s")
	_, err = GetDuration("CRS_TEST_DUR", 0)
	assert.Error(t, err)
}

func TestLoadRequiresSource(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FEED_URL", "")

	_, _, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL or FEED_URL")
}

func TestLoadRejectsUnknownSink(t *testing.T) {
	t.Setenv("FEED_URL", "ws://localhost:9000/feed")
	t.Setenv("RENDER_SINK", "carrier-pigeon")

	_, _, err := Load()
	assert.ErrorContains(t, err, "RENDER_SINK")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FEED_URL", "ws://localhost:9000/feed")
	t.Setenv("RENDER_SINK", "")
	t.Setenv("DEBOUNCE", "")
	t.Setenv("TIMEZONE", "UTC")

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "log", cfg.RenderSink)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestRoster(t *testing.T) {
	var open *Roster
	assert.True(t, open.Permits("anyone"))
	assert.True(t, NewRoster().Permits("anyone"))

	r := NewRoster("leo", " ana ", "")
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Permits("leo"))
	assert.True(t, r.Permits("ana"))
	assert.False(t, r.Permits("bruno"))
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("couriers:\n  - leo\n  - ana\n"), 0o644))

	r, err := LoadRoster(path)
	require.NoError(t, err)
	assert.True(t, r.Permits("leo"))
	assert.False(t, r.Permits("bruno"))

	_, err = LoadRoster(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
