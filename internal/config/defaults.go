package config

const (
	defaultWidth           = 1280
	defaultHeight          = 720
	defaultFPS             = 30
	defaultOutputDir       = "output"
	defaultMusicVolume     = 0.3
	defaultNarrationVolume = 1.0
)

// ApplyDefaults fills unset fields and expands the preset, if any, into
// concrete dimensions.
func (c *Config) ApplyDefaults() {
	switch c.Preset {
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	}

	if c.Width == 0 {
		c.Width = defaultWidth
	}
	if c.Height == 0 {
		c.Height = defaultHeight
	}
	if c.FPS == 0 {
		c.FPS = defaultFPS
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.MusicVolume == 0 {
		c.MusicVolume = defaultMusicVolume
	}
	if c.NarrationVolume == 0 {
		c.NarrationVolume = defaultNarrationVolume
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}
