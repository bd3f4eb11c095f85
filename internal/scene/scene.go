package scene

// Scene is one narration+visual+audio unit of a presentation. Any of the
// asset fields may be empty; the player substitutes fallbacks at runtime.
type Scene struct {
	ID        string  `yaml:"id"`
	Narration string  `yaml:"narration"`
	ImageURL  string  `yaml:"image"`
	VideoURL  string  `yaml:"video"`
	AudioURL  string  `yaml:"audio"`
	// AudioDuration is the narration length in seconds. When narration
	// audio exists it is the authoritative timing source for subtitles
	// and scene length.
	AudioDuration float64 `yaml:"audio_duration"`
}

// HasVisual reports whether the scene carries any visual asset.
func (s Scene) HasVisual() bool {
	return s.VideoURL != "" || s.ImageURL != ""
}

// Duration returns the scene's narration length, or fallback when the
// scene has no authoritative duration.
func (s Scene) Duration(fallback float64) float64 {
	if s.AudioDuration > 0 {
		return s.AudioDuration
	}
	return fallback
}
