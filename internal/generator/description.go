package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectDescription is the structured document the timeline is generated from.
// Its shape is free-form; it is passed to the model as indented JSON.
type ProjectDescription map[string]any

var ErrEmptyDescription = errors.New("project description is empty")

// LoadProjectDescription reads a YAML or JSON file.
func LoadProjectDescription(path string) (ProjectDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project description: %w", err)
	}
	return ParseProjectDescription(data)
}

// ParseProjectDescription decodes YAML (JSON being a subset of it).
func ParseProjectDescription(data []byte) (ProjectDescription, error) {
	var desc ProjectDescription
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse project description: %w", err)
	}
	if len(desc) == 0 {
		return nil, ErrEmptyDescription
	}
	return desc, nil
}

// JSON renders the description as indented JSON for prompting.
func (d ProjectDescription) JSON() (string, error) {
	if len(d) == 0 {
		return "", ErrEmptyDescription
	}
	b, err := json.MarshalIndent(map[string]any(d), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal project description: %w", err)
	}
	return string(b), nil
}
