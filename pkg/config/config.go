// Package config loads viewer settings from TOML and merges command line
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Render modes.
const (
	ModeShaded    = "shaded"
	ModeWireframe = "wireframe"
	ModePoints    = "points"
)

// Config holds every setting of the viewer.
type Config struct {
	Render   RenderConfig   `toml:"render"`
	Skin     SkinConfig     `toml:"skin"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Log      LogConfig      `toml:"log"`
}

// RenderConfig controls interactive drawing.
type RenderConfig struct {
	FPS         int        `toml:"fps"`
	Background  string     `toml:"background"` // "R,G,B"
	Mode        string     `toml:"mode"`
	Light       [3]float64 `toml:"light"` // Direction toward the light
	DoubleSided bool       `toml:"double_sided"`
}

// SkinConfig controls the skinning pass and the importer.
type SkinConfig struct {
	Enabled      bool `toml:"enabled"`
	VertexColors bool `toml:"vertex_colors"`
	// Version is the block version imported assets are laid out for.
	Version           uint32 `toml:"version"`
	MaxPartitionBones int    `toml:"max_partition_bones"`
}

// SnapshotConfig controls image output.
type SnapshotConfig struct {
	Size        int     `toml:"size"`
	Supersample int     `toml:"supersample"`
	Format      string  `toml:"format"`
	Yaw         float64 `toml:"yaw"`   // Degrees
	Pitch       float64 `toml:"pitch"` // Degrees
}

// LogConfig controls diagnostics output.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built in settings.
func Default() Config {
	return Config{
		Render: RenderConfig{
			FPS:         30,
			Background:  "24,24,32",
			Mode:        ModeShaded,
			Light:       [3]float64{0.5, 1, 0.8},
			DoubleSided: true,
		},
		Skin: SkinConfig{
			Enabled:           true,
			VertexColors:      true,
			Version:           130,
			MaxPartitionBones: 80,
		},
		Snapshot: SnapshotConfig{
			Size:        512,
			Supersample: 2,
			Format:      "webp",
			Yaw:         30,
			Pitch:       15,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads a TOML file over the defaults. Keys the file leaves out keep
// their default values; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Flags holds command line values that override the file.
type Flags struct {
	FPS         int
	Version     uint32
	NoSkin      bool
	Size        int
	Supersample int
	Format      string
	LogLevel    string
}

// Resolve applies flags over the config. Zero flag values leave the
// config untouched.
func (c *Config) Resolve(flags Flags) {
	if flags.FPS > 0 {
		c.Render.FPS = flags.FPS
	}
	if flags.Version > 0 {
		c.Skin.Version = flags.Version
	}
	if flags.NoSkin {
		c.Skin.Enabled = false
	}
	if flags.Size > 0 {
		c.Snapshot.Size = flags.Size
	}
	if flags.Supersample > 0 {
		c.Snapshot.Supersample = flags.Supersample
	}
	if flags.Format != "" {
		c.Snapshot.Format = strings.ToLower(strings.TrimPrefix(flags.Format, "."))
	}
	if flags.LogLevel != "" {
		c.Log.Level = flags.LogLevel
	}
}

// Validate reports the first out of range setting.
func (c Config) Validate() error {
	if c.Render.FPS < 1 || c.Render.FPS > 240 {
		return fmt.Errorf("%w: render.fps %d not in [1, 240]", ErrInvalid, c.Render.FPS)
	}
	if _, err := c.BackgroundRGB(); err != nil {
		return err
	}
	switch c.Render.Mode {
	case ModeShaded, ModeWireframe, ModePoints:
	default:
		return fmt.Errorf("%w: render.mode %q", ErrInvalid, c.Render.Mode)
	}
	if c.Render.Light == [3]float64{} {
		return fmt.Errorf("%w: render.light is the zero vector", ErrInvalid)
	}
	if c.Skin.Version == 0 {
		return fmt.Errorf("%w: skin.version must be set", ErrInvalid)
	}
	if c.Skin.MaxPartitionBones < 0 {
		return fmt.Errorf("%w: skin.max_partition_bones %d is negative", ErrInvalid, c.Skin.MaxPartitionBones)
	}
	if c.Snapshot.Size < 16 || c.Snapshot.Size > 8192 {
		return fmt.Errorf("%w: snapshot.size %d not in [16, 8192]", ErrInvalid, c.Snapshot.Size)
	}
	if c.Snapshot.Supersample < 1 || c.Snapshot.Supersample > 8 {
		return fmt.Errorf("%w: snapshot.supersample %d not in [1, 8]", ErrInvalid, c.Snapshot.Supersample)
	}
	switch c.Snapshot.Format {
	case "png", "webp":
	default:
		return fmt.Errorf("%w: snapshot.format %q", ErrInvalid, c.Snapshot.Format)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// BackgroundRGB parses the "R,G,B" background color.
func (c Config) BackgroundRGB() ([3]uint8, error) {
	var rgb [3]uint8
	parts := strings.Split(c.Render.Background, ",")
	if len(parts) != 3 {
		return rgb, fmt.Errorf("%w: render.background %q is not R,G,B", ErrInvalid, c.Render.Background)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return rgb, fmt.Errorf("%w: render.background %q: %w", ErrInvalid, c.Render.Background, err)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}

// LogLevel parses log.level as a slog level name such as "debug" or "warn".
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return l, nil
}
