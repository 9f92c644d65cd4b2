package agents

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrAgentNotFound is returned when no agent matches the requested
// reference. Callers must treat this as terminal: there is no fallback
// agent.
var ErrAgentNotFound = errors.New("no agent matches the requested reference")

// Registry holds the set of known agents. It is an explicitly-owned
// instance, not a package singleton, so tests and sessions can run against
// isolated registries.
type Registry struct {
	mu     sync.Mutex
	agents []*Agent
}

func NewRegistry() *Registry {
	return &Registry{}
}

// NewRegistryWithBuiltins returns a registry seeded with the built-in
// agents.
func NewRegistryWithBuiltins() *Registry {
	r := NewRegistry()
	for _, agent := range Builtins() {
		r.Register(agent)
	}
	return r
}

// Register adds an agent to the registry. An agent with the same ID
// replaces the existing entry; this is how a provisional agent becomes
// canonical. Replacing an entry never carries a pending credential back in.
func (r *Registry) Register(agent *Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.agents {
		if existing.ID == agent.ID {
			log.Debug().Str("agent_id", agent.ID).Msg("replacing registered agent")
			r.agents[i] = agent
			return
		}
	}
	r.agents = append(r.agents, agent)
}

// Replace swaps the agent registered under oldID for its canonical
// successor. Used when the backend issues a new identifier at provisioning
// time.
func (r *Registry) Replace(oldID string, agent *Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.agents {
		if existing.ID == oldID {
			r.agents[i] = agent
			return
		}
	}
	r.agents = append(r.agents, agent)
}

// Resolve maps a user-facing reference to an agent. Matching precedence:
// exact ID, exact name, exact display name, then the case-insensitive
// variant of each, in that order. The first match wins.
func (r *Registry) Resolve(reference string) (*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reference == "" || len(r.agents) == 0 {
		return nil, ErrAgentNotFound
	}

	exactMatchers := []func(*Agent) string{
		func(a *Agent) string { return a.ID },
		func(a *Agent) string { return a.Name },
		func(a *Agent) string { return a.DisplayName },
	}
	for _, field := range exactMatchers {
		for _, agent := range r.agents {
			if field(agent) == reference {
				return agent, nil
			}
		}
	}

	lowered := strings.ToLower(reference)
	for _, field := range exactMatchers {
		for _, agent := range r.agents {
			if strings.ToLower(field(agent)) == lowered {
				return agent, nil
			}
		}
	}

	return nil, ErrAgentNotFound
}

// Get returns the agent registered under the given ID.
func (r *Registry) Get(id string) (*Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, agent := range r.agents {
		if agent.ID == id {
			return agent, true
		}
	}
	return nil, false
}

// List returns the registered agents in registration order.
func (r *Registry) List() []*Agent {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret := make([]*Agent, len(r.agents))
	copy(ret, r.agents)
	return ret
}
