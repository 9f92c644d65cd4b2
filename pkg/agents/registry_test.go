package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmptyRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("claude")
	require.ErrorIs(t, err, ErrAgentNotFound)
}

func TestResolveExactID(t *testing.T) {
	r := NewRegistryWithBuiltins()
	agent, err := r.Resolve("gpt")
	require.NoError(t, err)
	assert.Equal(t, "GPT-4 Turbo", agent.DisplayName)
}

func TestResolveIDBeatsDisplayName(t *testing.T) {
	r := NewRegistry()
	r.Register(&Agent{ID: "other", Name: "other", DisplayName: "GPT"})
	r.Register(&Agent{ID: "gpt", Name: "gpt", DisplayName: "GPT-4 Turbo"})

	// "gpt" matches the second agent's ID exactly and the first agent's
	// display name case-insensitively; the ID match must win.
	agent, err := r.Resolve("gpt")
	require.NoError(t, err)
	assert.Equal(t, "gpt", agent.ID)
}

func TestResolveCaseInsensitiveDisplayName(t *testing.T) {
	r := NewRegistry()
	r.Register(NewCustomAgent("Claude", "Anthropic", "sk-test", ""))

	agent, err := r.Resolve("claude")
	require.NoError(t, err)
	assert.Equal(t, "Claude", agent.DisplayName)
	assert.True(t, agent.Provisional())
}

func TestRegisterReplacesByID(t *testing.T) {
	r := NewRegistry()
	r.Register(&Agent{ID: "a1", Name: "first"})
	r.Register(&Agent{ID: "a1", Name: "second"})

	require.Len(t, r.List(), 1)
	agent, ok := r.Get("a1")
	require.True(t, ok)
	assert.Equal(t, "second", agent.Name)
}

func TestReplaceSwapsProvisionalForCanonical(t *testing.T) {
	r := NewRegistry()
	pending := NewCustomAgent("Llama 3", "Groq", "gsk-secret", "llama-3-70b")
	r.Register(pending)

	canonical := &Agent{ID: "agent-42", Name: pending.Name, DisplayName: pending.DisplayName, Platform: pending.Platform, CredentialConfigured: true}
	r.Replace(pending.ID, canonical)

	require.Len(t, r.List(), 1)
	agent, ok := r.Get("agent-42")
	require.True(t, ok)
	assert.False(t, agent.Provisional())
	_, ok = r.Get(pending.ID)
	assert.False(t, ok)
}

func TestNewCustomAgentSlugsName(t *testing.T) {
	agent := NewCustomAgent("Gemini  Pro Ultra", "Google AI", "key", "")
	assert.Equal(t, "gemini-pro-ultra", agent.Name)
	assert.True(t, agent.CredentialConfigured)
}
