package types

import "strings"

// ModelRef identifies a backend model as a provider/model pair.
type ModelRef struct {
	ProviderID string `json:"providerID" yaml:"providerID"`
	ModelID    string `json:"modelID" yaml:"modelID"`

	// Optional human-readable label for menus. Falls back to String().
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ParseModel parses a "provider/model" identifier.
// Format matches the opencode config Model field (e.g. "anthropic/claude-sonnet-4").
func ParseModel(s string) (ModelRef, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ModelRef{}, false
	}
	return ModelRef{ProviderID: parts[0], ModelID: parts[1]}, true
}

// String returns the "provider/model" form.
func (m ModelRef) String() string {
	return m.ProviderID + "/" + m.ModelID
}

// DisplayLabel returns the label if set, otherwise the provider/model form.
func (m ModelRef) DisplayLabel() string {
	if m.Label != "" {
		return m.Label
	}
	return m.String()
}

// IsZero reports whether the reference is empty.
func (m ModelRef) IsZero() bool {
	return m.ProviderID == "" && m.ModelID == ""
}
