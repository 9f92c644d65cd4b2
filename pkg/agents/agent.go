package agents

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Agent is a configured AI backend endpoint. Built-in agents ship with the
// client; user-added agents start out provisional, carrying the credential
// that will be handed to the backend on first use.
type Agent struct {
	ID                   string
	Name                 string
	DisplayName          string
	Platform             string
	Model                string
	CredentialConfigured bool

	// PendingCredential is only set while the agent exists client-side.
	// It is zeroed as soon as the backend has accepted it and must never
	// be reintroduced afterwards.
	PendingCredential string
}

// Provisional reports whether the agent has not yet been created
// server-side.
func (a *Agent) Provisional() bool {
	return a.PendingCredential != ""
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NewCustomAgent builds a provisional agent from user input. The internal
// name is derived from the display name by lowercasing and collapsing
// whitespace runs into dashes.
func NewCustomAgent(displayName string, platform string, credential string, model string) *Agent {
	return &Agent{
		ID:                   fmt.Sprintf("custom-%d", time.Now().UnixMilli()),
		Name:                 whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(displayName)), "-"),
		DisplayName:          displayName,
		Platform:             platform,
		Model:                model,
		CredentialConfigured: true,
		PendingCredential:    credential,
	}
}

// Builtins returns the agent configurations that are always available.
func Builtins() []*Agent {
	return []*Agent{
		{ID: "claude", Name: "claude", DisplayName: "Claude 3.5 Sonnet", Platform: "Anthropic", CredentialConfigured: true},
		{ID: "gpt", Name: "gpt", DisplayName: "GPT-4 Turbo", Platform: "OpenAI", CredentialConfigured: true},
		{ID: "mistral", Name: "mistral", DisplayName: "Mistral Large", Platform: "Mistral AI", CredentialConfigured: true},
	}
}
