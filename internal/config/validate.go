package config

import "fmt"

// Validate checks field combinations after defaults are applied.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		// Encoders require even dimensions for 4:2:0 output.
		return fmt.Errorf("canvas %dx%d must have even dimensions", c.Width, c.Height)
	}
	if c.FPS <= 0 || c.FPS > 120 {
		return fmt.Errorf("fps %d out of range", c.FPS)
	}
	if c.MusicVolume < 0 || c.MusicVolume > 1 {
		return fmt.Errorf("music_volume %f out of [0,1]", c.MusicVolume)
	}
	if c.NarrationVolume < 0 || c.NarrationVolume > 1 {
		return fmt.Errorf("narration_volume %f out of [0,1]", c.NarrationVolume)
	}
	switch c.Preset {
	case "", "16:9", "9:16", "4:5":
	default:
		return fmt.Errorf("unknown preset %q", c.Preset)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
