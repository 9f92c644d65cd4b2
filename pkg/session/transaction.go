package session

import (
	"github.com/huandu/go-clone"
	"github.com/rs/zerolog/log"

	"github.com/solmind-ai/solmind/pkg/conversation"
	"github.com/solmind-ai/solmind/pkg/events"
)

// streamingTransaction is the mutable state of one send. It applies the
// optimistic user message plus an empty assistant placeholder, feeds deltas
// into the placeholder, and either commits or restores the pre-send
// snapshot wholesale.
type streamingTransaction struct {
	store    *conversation.Store
	agentRef string
	chatID   string

	snapshot  *conversation.Chat
	messages  []*conversation.Message
	assistant *conversation.Message
}

// begin captures the rollback snapshot and applies the optimistic
// mutation. Nothing about the transaction is observable before begin
// returns; after it, the store shows the user message and an empty
// assistant reply.
func (t *streamingTransaction) begin(userText string) error {
	snapshot, err := t.store.Snapshot(t.agentRef, t.chatID)
	if err != nil {
		return err
	}
	t.snapshot = snapshot

	current, _ := t.store.Chat(t.agentRef, t.chatID)
	t.assistant = conversation.NewMessage(conversation.RoleAssistant, "")
	t.messages = append(clone.Clone(current.Messages).([]*conversation.Message),
		conversation.NewMessage(conversation.RoleUser, userText),
		t.assistant,
	)

	return t.store.UpsertMessages(t.agentRef, t.chatID, t.messages)
}

// applyDelta appends one text increment to the assistant placeholder and
// pushes the updated history into the store.
func (t *streamingTransaction) applyDelta(delta string) error {
	t.assistant.Content += delta
	return t.store.UpsertMessages(t.agentRef, t.chatID, t.messages)
}

// commit finalizes the assistant message. The history already holds the
// accumulated text; commit only reconciles any divergence between the
// accumulated deltas and the terminal event's view of the completion.
func (t *streamingTransaction) commit() error {
	return t.store.UpsertMessages(t.agentRef, t.chatID, t.messages)
}

// rollback restores the chat to its pre-send state. Every optimistic
// mutation, including derived-field changes such as an auto-assigned
// title, is undone in one replacement.
func (t *streamingTransaction) rollback() {
	if t.snapshot == nil {
		return
	}
	if err := t.store.Restore(t.agentRef, t.chatID, t.snapshot); err != nil {
		log.Warn().Err(err).
			Str("agent", t.agentRef).
			Str("chat_id", t.chatID).
			Msg("failed to restore pre-send snapshot")
	}
}

func (t *streamingTransaction) completion() string {
	if t.assistant == nil {
		return ""
	}
	return t.assistant.Content
}

// publishEvent fans an event out to every sink, logging instead of failing
// on sink errors. Event delivery is best-effort; the store is the source
// of truth.
func publishEvent(sinks []events.EventSink, event events.Event) {
	for _, sink := range sinks {
		if err := sink.PublishEvent(event); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.Type())).Msg("failed to publish event")
		}
	}
}
