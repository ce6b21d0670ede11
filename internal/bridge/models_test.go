package bridge

import (
	"testing"

	"github.com/opencode-ai/discode/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []types.ModelRef {
	return []types.ModelRef{
		{ProviderID: "anthropic", ModelID: "claude-sonnet-4", Label: "Claude Sonnet 4"},
		{ProviderID: "anthropic", ModelID: "claude-haiku-3-5", Label: "Claude Haiku 3.5"},
		{ProviderID: "openai", ModelID: "gpt-4o", Label: "GPT-4o"},
	}
}

func TestModelsDefaultFallback(t *testing.T) {
	def := types.ModelRef{ProviderID: "anthropic", ModelID: "claude-sonnet-4"}
	m := NewModels(def)

	assert.Equal(t, def, m.For("user-1"))

	pref := types.ModelRef{ProviderID: "openai", ModelID: "gpt-4o"}
	m.Set("user-1", pref)
	assert.Equal(t, pref, m.For("user-1"))
	assert.Equal(t, def, m.For("user-2"))

	m.Clear("user-1")
	assert.Equal(t, def, m.For("user-1"))
}

func TestModelsSetDefault(t *testing.T) {
	m := NewModels(types.ModelRef{ProviderID: "anthropic", ModelID: "claude-sonnet-4"})

	updated := types.ModelRef{ProviderID: "openai", ModelID: "gpt-4o"}
	m.SetDefault(updated)
	assert.Equal(t, updated, m.For("user-1"))
}

func TestResolveExactID(t *testing.T) {
	ref, ok := Resolve("openai/gpt-4o", testCatalog())
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", ref.ModelID)
	assert.Equal(t, "GPT-4o", ref.Label)
}

func TestResolveFuzzyModelID(t *testing.T) {
	ref, ok := Resolve("claude-sonet-4", testCatalog())
	require.True(t, ok)
	assert.Equal(t, "claude-sonnet-4", ref.ModelID)
}

func TestResolveFuzzyLabel(t *testing.T) {
	ref, ok := Resolve("claude haiku", testCatalog())
	require.True(t, ok)
	assert.Equal(t, "claude-haiku-3-5", ref.ModelID)
}

func TestResolveCaseInsensitive(t *testing.T) {
	ref, ok := Resolve("GPT-4O", testCatalog())
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", ref.ModelID)
}

func TestResolveRejectsDistantInput(t *testing.T) {
	_, ok := Resolve("completely unrelated gibberish input", testCatalog())
	assert.False(t, ok)

	_, ok = Resolve("", testCatalog())
	assert.False(t, ok)
}

func TestResolveWithoutCatalogTrustsParse(t *testing.T) {
	ref, ok := Resolve("ark/ep-custom-endpoint", nil)
	require.True(t, ok)
	assert.Equal(t, "ark", ref.ProviderID)
	assert.Equal(t, "ep-custom-endpoint", ref.ModelID)

	_, ok = Resolve("not-a-model", nil)
	assert.False(t, ok)
}
