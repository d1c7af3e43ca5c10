package persona

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingID   = errors.New("persona id is required")
	ErrDuplicateID = errors.New("duplicate persona id")
	ErrNoPersonas  = errors.New("persona file defines no personas")
)

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadFile reads personas from a YAML document of the form
//
//	personas:
//	  - id: mongolian-assistant
//	    name: Монгол туслах
//	    system_prompt: ...
func LoadFile(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a persona YAML document.
func Parse(data []byte) ([]Persona, error) {
	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode persona file: %w", err)
	}
	if len(file.Personas) == 0 {
		return nil, ErrNoPersonas
	}

	seen := make(map[string]struct{}, len(file.Personas))
	for i, p := range file.Personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona #%d: %w", i+1, ErrMissingID)
		}
		key := normalizeID(p.ID)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[key] = struct{}{}
	}
	return file.Personas, nil
}
