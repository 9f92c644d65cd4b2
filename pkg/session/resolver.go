package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/solmind-ai/solmind/pkg/agents"
	"github.com/solmind-ai/solmind/pkg/api"
	"github.com/solmind-ai/solmind/pkg/conversation"
)

// Resolver turns (agent reference, chat identifier) into canonical
// backend identifiers, creating the agent and the chat server-side the
// first time they are used. Resolution is idempotent: once both resources
// are canonical it makes no network calls at all.
type Resolver struct {
	registry *agents.Registry
	store    *conversation.Store
	backend  Backend
	bridge   *Bridge
}

func NewResolver(registry *agents.Registry, store *conversation.Store, backend Backend, bridge *Bridge) *Resolver {
	return &Resolver{
		registry: registry,
		store:    store,
		backend:  backend,
		bridge:   bridge,
	}
}

// Resolve maps the user-facing agent reference and chat identifier to the
// canonical pair the backend knows. A provisional agent is created first;
// only with a canonical agent in hand is a provisional chat created. Either
// creation failing aborts resolution with the corresponding typed error,
// leaving the remaining provisional state intact for a retry.
func (r *Resolver) Resolve(ctx context.Context, agentRef string, chatID string) (*agents.Agent, string, error) {
	agent, err := r.registry.Resolve(agentRef)
	if err != nil {
		return nil, "", err
	}

	if agent.Provisional() {
		agent, err = r.provisionAgent(ctx, agent)
		if err != nil {
			return nil, "", &ProvisioningError{AgentRef: agentRef, Err: err}
		}
	}

	if !conversation.IsProvisionalID(chatID) {
		return agent, chatID, nil
	}

	canonicalChatID, err := r.provisionChat(ctx, agent, chatID)
	if err != nil {
		return nil, "", &ChatCreationError{AgentID: agent.ID, Err: err}
	}

	return agent, canonicalChatID, nil
}

// provisionAgent creates the agent server-side and swaps the registry entry
// for its canonical successor. The pending credential travels in the create
// request and nowhere else; the replacement entry never carries it.
func (r *Resolver) provisionAgent(ctx context.Context, agent *agents.Agent) (*agents.Agent, error) {
	log.Debug().
		Str("agent_id", agent.ID).
		Str("platform", agent.Platform).
		Msg("provisioning agent on first use")

	created, err := r.backend.CreateAgent(ctx, api.CreateAgentRequest{
		Name:        agent.Name,
		DisplayName: agent.DisplayName,
		Platform:    agent.Platform,
		APIKey:      agent.PendingCredential,
		Model:       agent.Model,
	})
	if err != nil {
		return nil, err
	}

	canonical := &agents.Agent{
		ID:                   created.ID,
		Name:                 agent.Name,
		DisplayName:          agent.DisplayName,
		Platform:             agent.Platform,
		Model:                agent.Model,
		CredentialConfigured: true,
	}
	r.registry.Replace(agent.ID, canonical)
	r.bridge.AnnounceAgentProvisioned(agent.ID, canonical.ID)

	log.Info().
		Str("old_id", agent.ID).
		Str("new_id", canonical.ID).
		Msg("agent provisioned")

	return canonical, nil
}

// provisionChat creates the chat server-side and reconciles the provisional
// identifier through the bridge. When the chat was never added to the store
// (a bare send into a fresh conversation) the canonical chat is added
// directly and announced as created.
func (r *Resolver) provisionChat(ctx context.Context, agent *agents.Agent, provisionalID string) (string, error) {
	name := ""
	memorySize := ""
	local, ok := r.store.Chat(agent.Name, provisionalID)
	if ok {
		name = local.Name
		memorySize = local.MemorySize
	}

	created, err := r.backend.CreateChat(ctx, agent.ID, api.CreateChatRequest{
		Name:       name,
		MemorySize: memorySize,
	})
	if err != nil {
		return "", err
	}

	if ok {
		if err := r.bridge.RenameChat(agent.Name, provisionalID, created.ID); err != nil {
			return "", err
		}
	} else {
		chat := conversation.NewChat()
		chat.ID = created.ID
		if created.Name != "" {
			chat.Name = created.Name
		}
		r.store.AddChat(agent.Name, chat)
		r.bridge.AnnounceChatCreated(agent.ID, created.ID)
	}

	return created.ID, nil
}
