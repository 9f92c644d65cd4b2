package session

import (
	"context"

	"github.com/solmind-ai/solmind/pkg/api"
)

// Backend is the slice of the backend API the orchestration layer needs.
// *api.Client satisfies it; tests substitute fakes.
type Backend interface {
	CreateAgent(ctx context.Context, create api.CreateAgentRequest) (*api.AgentInfo, error)
	CreateChat(ctx context.Context, agentID string, create api.CreateChatRequest) (*api.ChatInfo, error)
	GetMessages(ctx context.Context, agentID string, chatID string) ([]api.MessageInfo, error)
	StreamMessage(ctx context.Context, agentID string, chatID string, send api.SendMessageRequest) (<-chan api.StreamEvent, error)
}

var _ Backend = (*api.Client)(nil)
