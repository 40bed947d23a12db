package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nifview.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[render]
mode = "wireframe"

[skin]
version = 100

[log]
level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeWireframe, cfg.Render.Mode)
	assert.Equal(t, uint32(100), cfg.Skin.Version)
	assert.Equal(t, Default().Render.FPS, cfg.Render.FPS, "unset key keeps its default")
	assert.True(t, cfg.Skin.Enabled)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Parse([]byte("[render]\nfsp = 3\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Parse([]byte("not toml ["))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Size = 1024
	data, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Resolve(Flags{})
	assert.Equal(t, Default(), cfg, "empty flags change nothing")

	cfg.Resolve(Flags{
		FPS:         60,
		Version:     100,
		NoSkin:      true,
		Size:        256,
		Supersample: 4,
		Format:      ".PNG",
		LogLevel:    "info",
	})
	assert.Equal(t, 60, cfg.Render.FPS)
	assert.Equal(t, uint32(100), cfg.Skin.Version)
	assert.False(t, cfg.Skin.Enabled)
	assert.Equal(t, 256, cfg.Snapshot.Size)
	assert.Equal(t, 4, cfg.Snapshot.Supersample)
	assert.Equal(t, "png", cfg.Snapshot.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fps zero", func(c *Config) { c.Render.FPS = 0 }},
		{"fps too high", func(c *Config) { c.Render.FPS = 1000 }},
		{"background short", func(c *Config) { c.Render.Background = "1,2" }},
		{"background overflow", func(c *Config) { c.Render.Background = "1,2,300" }},
		{"unknown mode", func(c *Config) { c.Render.Mode = "textured" }},
		{"zero light", func(c *Config) { c.Render.Light = [3]float64{} }},
		{"no version", func(c *Config) { c.Skin.Version = 0 }},
		{"negative partition bones", func(c *Config) { c.Skin.MaxPartitionBones = -1 }},
		{"tiny snapshot", func(c *Config) { c.Snapshot.Size = 4 }},
		{"supersample zero", func(c *Config) { c.Snapshot.Supersample = 0 }},
		{"bad format", func(c *Config) { c.Snapshot.Format = "gif" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestBackgroundRGB(t *testing.T) {
	cfg := Default()
	cfg.Render.Background = " 10, 20 ,30"
	rgb, err := cfg.BackgroundRGB()
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{10, 20, 30}, rgb)
}
