package conversation

import (
	"sync"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	// ErrChatNotFound is returned when a chat identifier is not live in
	// the store for the given agent.
	ErrChatNotFound = errors.New("chat not found")
	// ErrDuplicateChatID is returned when a rename would leave two chats
	// with the same identifier under one agent.
	ErrDuplicateChatID = errors.New("chat identifier already in use")
)

// Store holds the ordered chats per agent and the messages per chat. It is
// the single mutation point for conversation state; everything the rest of
// the application renders comes from here. All mutation goes through Store
// methods, never through direct manipulation of returned values — reads
// hand out deep copies.
type Store struct {
	mu    sync.Mutex
	chats map[string][]*Chat
}

func NewStore() *Store {
	return &Store{
		chats: make(map[string][]*Chat),
	}
}

// AddChat prepends a chat to the agent's list, newest first. Adding a chat
// whose identifier is already live replaces the existing entry in place.
// The chat is deep-copied on insert so the caller's value never aliases
// store-owned state.
func (s *Store) AddChat(agentRef string, chat *Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := clone.Clone(chat).(*Chat)
	for i, existing := range s.chats[agentRef] {
		if existing.ID == owned.ID {
			s.chats[agentRef][i] = owned
			return
		}
	}
	s.chats[agentRef] = append([]*Chat{owned}, s.chats[agentRef]...)
}

// Chats returns deep copies of the agent's chats in store order.
func (s *Store) Chats(agentRef string) []*Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := make([]*Chat, 0, len(s.chats[agentRef]))
	for _, chat := range s.chats[agentRef] {
		ret = append(ret, clone.Clone(chat).(*Chat))
	}
	return ret
}

// Chat returns a deep copy of one chat.
func (s *Store) Chat(agentRef string, chatID string) (*Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.find(agentRef, chatID)
	if chat == nil {
		return nil, false
	}
	return clone.Clone(chat).(*Chat), true
}

// UpsertMessages replaces the message list of a chat and recomputes its
// derived fields. The chat must already be live in the store.
func (s *Store) UpsertMessages(agentRef string, chatID string, messages []*Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.find(agentRef, chatID)
	if chat == nil {
		return errors.Wrapf(ErrChatNotFound, "agent %s chat %s", agentRef, chatID)
	}

	chat.Messages = clone.Clone(messages).([]*Message)
	chat.recomputeDerived()
	return nil
}

// RenameChatID atomically relabels a chat entry in place, preserving its
// messages and derived fields. Used by the reconciliation bridge when a
// provisional identifier becomes canonical.
func (s *Store) RenameChatID(agentRef string, oldID string, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(agentRef, newID) != nil {
		return errors.Wrapf(ErrDuplicateChatID, "agent %s chat %s", agentRef, newID)
	}
	chat := s.find(agentRef, oldID)
	if chat == nil {
		return errors.Wrapf(ErrChatNotFound, "agent %s chat %s", agentRef, oldID)
	}

	log.Debug().Str("agent", agentRef).Str("old_id", oldID).Str("new_id", newID).Msg("renaming chat")
	chat.ID = newID
	return nil
}

// RemoveChat drops a chat from the agent's list.
func (s *Store) RemoveChat(agentRef string, chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats := s.chats[agentRef]
	for i, chat := range chats {
		if chat.ID == chatID {
			s.chats[agentRef] = append(chats[:i:i], chats[i+1:]...)
			return
		}
	}
}

// Snapshot captures a chat's full state as an immutable deep copy. A
// failed send restores it wholesale instead of applying inverse edits, so
// rollback is exact down to the derived fields.
func (s *Store) Snapshot(agentRef string, chatID string) (*Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.find(agentRef, chatID)
	if chat == nil {
		return nil, errors.Wrapf(ErrChatNotFound, "agent %s chat %s", agentRef, chatID)
	}
	return clone.Clone(chat).(*Chat), nil
}

// Restore replaces the chat entry with a previously captured snapshot,
// keeping its position in the agent's list.
func (s *Store) Restore(agentRef string, chatID string, snapshot *Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, chat := range s.chats[agentRef] {
		if chat.ID == chatID {
			s.chats[agentRef][i] = clone.Clone(snapshot).(*Chat)
			return nil
		}
	}
	return errors.Wrapf(ErrChatNotFound, "agent %s chat %s", agentRef, chatID)
}

// find must be called with the lock held.
func (s *Store) find(agentRef string, chatID string) *Chat {
	for _, chat := range s.chats[agentRef] {
		if chat.ID == chatID {
			return chat
		}
	}
	return nil
}
