package session

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"

	"github.com/solmind-ai/solmind/pkg/conversation"
	"github.com/solmind-ai/solmind/pkg/events"
)

// Selection tracks which agent and chat the user is currently looking at.
// It is a holder of chat identifiers like any other, so it subscribes to
// reconciliation events and follows renames; a selection never keeps a
// provisional identifier alive after reconciliation.
type Selection struct {
	mu       sync.Mutex
	agentRef string
	chatID   string
}

func NewSelection() *Selection {
	return &Selection{}
}

// Set points the selection at a chat.
func (s *Selection) Set(agentRef string, chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agentRef = agentRef
	s.chatID = chatID
}

// Current returns the selected agent reference and chat identifier.
func (s *Selection) Current() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentRef, s.chatID
}

// Apply follows a chat rename. A selection pointing at the old identifier
// moves to the new one; anything else is untouched.
func (s *Selection) Apply(renamed *events.EventChatRenamed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.agentRef == renamed.AgentRef && s.chatID == renamed.OldID {
		log.Debug().
			Str("old_id", renamed.OldID).
			Str("new_id", renamed.NewID).
			Msg("selection following chat rename")
		s.chatID = renamed.NewID
	}
}

// Validate clears a selection whose chat is no longer live in the store,
// for instance after a delete. A provisional selection with no store entry
// is also cleared; it can never be reconciled.
func (s *Selection) Validate(store *conversation.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chatID == "" {
		return
	}
	if _, ok := store.Chat(s.agentRef, s.chatID); !ok {
		log.Debug().
			Str("agent", s.agentRef).
			Str("chat_id", s.chatID).
			Msg("clearing selection of removed chat")
		s.chatID = ""
	}
}

// Handler returns a watermill handler that applies reconciliation events
// to the selection. Register it on the reconciliation topic.
func (s *Selection) Handler() func(msg *message.Message) error {
	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := events.NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}

		if renamed, ok := e.(*events.EventChatRenamed); ok {
			s.Apply(renamed)
		}
		return nil
	}
}
