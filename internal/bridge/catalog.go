package bridge

import (
	"fmt"
	"os"

	"github.com/opencode-ai/discode/pkg/types"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of the model catalog.
type catalogFile struct {
	Models []catalogEntry `yaml:"models"`
}

type catalogEntry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label,omitempty"`
}

// LoadCatalog reads a YAML model catalog:
//
//	models:
//	  - id: anthropic/claude-sonnet-4
//	    label: Claude Sonnet 4
//	  - id: openai/gpt-4o
//
// Entries whose id does not parse as provider/model are rejected.
func LoadCatalog(path string) ([]types.ModelRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog YAML content.
func ParseCatalog(data []byte) ([]types.ModelRef, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	refs := make([]types.ModelRef, 0, len(file.Models))
	for _, entry := range file.Models {
		ref, ok := types.ParseModel(entry.ID)
		if !ok {
			return nil, fmt.Errorf("invalid model id %q: want provider/model", entry.ID)
		}
		ref.Label = entry.Label
		refs = append(refs, ref)
	}
	return refs, nil
}
