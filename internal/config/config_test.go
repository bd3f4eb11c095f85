package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("default canvas = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.FPS != 30 {
		t.Errorf("default fps = %d, want 30", cfg.FPS)
	}
	if cfg.MusicVolume != 0.3 || cfg.NarrationVolume != 1.0 {
		t.Errorf("default volumes = %f/%f", cfg.MusicVolume, cfg.NarrationVolume)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenecast.toml")
	body := "preset = \"9:16\"\nfps = 24\nmusic = \"bg.mp3\"\nmusic_volume = 0.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("preset canvas = %dx%d, want 720x1280", cfg.Width, cfg.Height)
	}
	if cfg.FPS != 24 {
		t.Errorf("fps = %d, want 24", cfg.FPS)
	}
	if cfg.MusicPath != "bg.mp3" || cfg.MusicVolume != 0.5 {
		t.Errorf("music = %q vol %f", cfg.MusicPath, cfg.MusicVolume)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"odd width", func(c *Config) { c.Width = 1281 }, true},
		{"zero fps", func(c *Config) { c.FPS = -1 }, true},
		{"volume out of range", func(c *Config) { c.MusicVolume = 1.5 }, true},
		{"bad preset", func(c *Config) { c.Preset = "21:9" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
