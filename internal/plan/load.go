package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and decodes a plan file. Both YAML and JSON files are
// accepted; JSON is a subset of YAML so a single decoder covers both.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a plan from raw YAML or JSON bytes.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if len(spec.Tasks) == 0 {
		return nil, fmt.Errorf("plan has no tasks")
	}
	return &spec, nil
}
