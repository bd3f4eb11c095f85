package scene

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Project is an ordered scene list loaded from a YAML file.
type Project struct {
	Version string  `yaml:"version"`
	Title   string  `yaml:"title,omitempty"`
	Scenes  []Scene `yaml:"scenes"`
}

// ReadProject loads and validates a project file. Scenes without an id get
// a generated one so downstream logging can always name the scene.
func ReadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}

	for i := range p.Scenes {
		if p.Scenes[i].ID == "" {
			p.Scenes[i].ID = uuid.NewString()
		}
	}
	return &p, nil
}

// WriteProject writes a project to a YAML file.
func WriteProject(p *Project, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks structural constraints the player relies on.
func (p *Project) Validate() error {
	if len(p.Scenes) == 0 {
		return fmt.Errorf("no scenes")
	}

	seen := make(map[string]int, len(p.Scenes))
	for i, s := range p.Scenes {
		if s.AudioDuration < 0 {
			return fmt.Errorf("scene %d: negative audio_duration %f", i, s.AudioDuration)
		}
		if s.ID != "" {
			if prev, dup := seen[s.ID]; dup {
				return fmt.Errorf("scene %d: duplicate id %q (first at %d)", i, s.ID, prev)
			}
			seen[s.ID] = i
		}
	}
	return nil
}
