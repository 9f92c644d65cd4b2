package session

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSendInFlight is returned when a send targets a chat that already has a
// stream running. Sends are serialized per chat identifier.
var ErrSendInFlight = errors.New("a send is already in flight for this chat")

// ProvisioningError wraps a failed agent-creation call. Nothing was
// created; the agent keeps its pending credential and the send was never
// started.
type ProvisioningError struct {
	AgentRef string
	Err      error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning agent %q failed: %v", e.AgentRef, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// ChatCreationError wraps a failed chat-creation call. The agent is
// canonical and usable; the chat stays provisional for a later retry.
type ChatCreationError struct {
	AgentID string
	Err     error
}

func (e *ChatCreationError) Error() string {
	return fmt.Sprintf("creating chat for agent %q failed: %v", e.AgentID, e.Err)
}

func (e *ChatCreationError) Unwrap() error {
	return e.Err
}

// StreamError wraps a failure during message send or mid-stream. By the
// time it is returned, the optimistic mutation has been rolled back and any
// partial assistant content discarded.
type StreamError struct {
	ChatID string
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("streaming exchange for chat %q failed: %v", e.ChatID, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
