package miner

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Rostezkiy/spectre/store"
)

// configSnippet is the YAML shape emitted by `spectre analyze
// --generate-config`; it matches the resources section the config loader
// reads back.
type configSnippet struct {
	Project   string           `yaml:"project"`
	Resources []store.Resource `yaml:"resources"`
}

// GenerateConfig renders suggested resources as a YAML configuration
// snippet ready to be written to spectre.yaml.
func GenerateConfig(resources []store.Resource) ([]byte, error) {
	data, err := yaml.Marshal(configSnippet{
		Project:   "auto_generated",
		Resources: resources,
	})
	if err != nil {
		return nil, fmt.Errorf("miner: marshal config: %w", err)
	}
	return data, nil
}
