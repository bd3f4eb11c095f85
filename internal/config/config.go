package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the player's settings. Zero values are filled in by
// ApplyDefaults; Validate rejects combinations the pipeline cannot run with.
type Config struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	FPS    int    `toml:"fps"`
	Preset string `toml:"preset"` // 16:9, 9:16, 4:5; overrides width/height

	OutputDir string `toml:"output_dir"`
	Quality   int    `toml:"quality"` // qscale passed to the encoder, 0 = encoder default

	MusicPath       string  `toml:"music"`
	MusicVolume     float64 `toml:"music_volume"`
	NarrationVolume float64 `toml:"narration_volume"`
	// Muted disables the live audio monitor; recording still captures the
	// full mix.
	Muted bool `toml:"muted"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "SCENECAST_CONFIG"

// Load reads the TOML config at path. A missing file is not an error: the
// defaults are returned so the player works without any config on disk.
func Load(path string) (*Config, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		path = env
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// fall through to defaults
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
