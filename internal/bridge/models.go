package bridge

import (
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/opencode-ai/discode/pkg/types"
)

// maxResolveDistance caps how far a fuzzy match may drift before the input
// is rejected as unrecognized.
const maxResolveDistance = 10

// Models holds per-user model preferences. A user with no recorded
// preference falls back to the configured default.
type Models struct {
	mu           sync.RWMutex
	prefs        map[string]types.ModelRef // userID -> preference
	defaultModel types.ModelRef
}

// NewModels creates a preference store with the given default.
func NewModels(defaultModel types.ModelRef) *Models {
	return &Models{
		prefs:        make(map[string]types.ModelRef),
		defaultModel: defaultModel,
	}
}

// SetDefault replaces the fallback model. Used on config reload.
func (m *Models) SetDefault(ref types.ModelRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultModel = ref
}

// Set records a user's preference.
func (m *Models) Set(userID string, ref types.ModelRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[userID] = ref
}

// For returns the model to use for a user.
func (m *Models) For(userID string) types.ModelRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ref, ok := m.prefs[userID]; ok {
		return ref
	}
	return m.defaultModel
}

// Clear drops a user's preference.
func (m *Models) Clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefs, userID)
}

// Resolve maps free-form user input to a catalog entry. Exact provider/model
// input parses directly; otherwise the catalog entry with the smallest
// levenshtein distance to the input wins, ties going to the earlier entry.
// Inputs further than maxResolveDistance from every entry are rejected.
func Resolve(input string, catalog []types.ModelRef) (types.ModelRef, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.ModelRef{}, false
	}

	if ref, ok := types.ParseModel(input); ok {
		for _, c := range catalog {
			if c.ProviderID == ref.ProviderID && c.ModelID == ref.ModelID {
				return c, true
			}
		}
		if len(catalog) == 0 {
			// No catalog to validate against: trust the parse.
			return ref, true
		}
	}

	lowered := strings.ToLower(input)
	best := types.ModelRef{}
	bestDist := maxResolveDistance + 1
	for _, c := range catalog {
		for _, candidate := range []string{c.String(), c.ModelID, c.Label} {
			if candidate == "" {
				continue
			}
			d := levenshtein.ComputeDistance(lowered, strings.ToLower(candidate))
			if d < bestDist {
				bestDist = d
				best = c
			}
		}
	}
	if bestDist > maxResolveDistance {
		return types.ModelRef{}, false
	}
	return best, true
}
