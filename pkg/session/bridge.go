package session

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/solmind-ai/solmind/pkg/conversation"
	"github.com/solmind-ai/solmind/pkg/events"
)

// Bridge is the single place where provisional identifiers become
// canonical. It applies the rename to the store and announces it on the
// reconciliation topic so every other holder of the old identifier can
// follow suit.
type Bridge struct {
	store *conversation.Store
	sinks []events.EventSink
}

func NewBridge(store *conversation.Store, sinks ...events.EventSink) *Bridge {
	return &Bridge{
		store: store,
		sinks: sinks,
	}
}

// AddSink registers an additional destination for reconciliation events.
func (b *Bridge) AddSink(sink events.EventSink) {
	b.sinks = append(b.sinks, sink)
}

// RenameChat relabels a provisional chat with its server-issued identifier
// and publishes the rename. The store mutation and the announcement carry
// the same pair of identifiers; subscribers never see a rename the store
// has not already applied.
func (b *Bridge) RenameChat(agentRef string, oldID string, newID string) error {
	if err := b.store.RenameChatID(agentRef, oldID, newID); err != nil {
		return err
	}

	log.Debug().
		Str("agent", agentRef).
		Str("old_id", oldID).
		Str("new_id", newID).
		Msg("chat identifier reconciled")

	publishEvent(b.sinks, events.NewChatRenamedEvent(
		events.EventMetadata{ID: uuid.New(), ChatID: newID},
		agentRef, oldID, newID,
	))
	return nil
}

// AnnounceChatCreated publishes that a chat now exists server-side under
// its canonical identifier without a prior provisional entry to rename.
func (b *Bridge) AnnounceChatCreated(agentID string, chatID string) {
	publishEvent(b.sinks, events.NewChatCreatedEvent(
		events.EventMetadata{ID: uuid.New(), AgentID: agentID, ChatID: chatID},
		chatID,
	))
}

// AnnounceAgentProvisioned publishes that a pending agent received its
// canonical identifier.
func (b *Bridge) AnnounceAgentProvisioned(oldID string, newID string) {
	publishEvent(b.sinks, events.NewAgentProvisionedEvent(
		events.EventMetadata{ID: uuid.New(), AgentID: newID},
		oldID, newID,
	))
}
