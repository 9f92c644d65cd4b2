package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/solmind-ai/solmind/pkg/api"
	"github.com/solmind-ai/solmind/pkg/conversation"
	"github.com/solmind-ai/solmind/pkg/events"
)

// Driver runs streaming exchanges against the backend. Each send is one
// transaction over the conversation store: either the full exchange lands
// (user message plus completed assistant reply) or the chat is restored to
// its exact pre-send state.
type Driver struct {
	resolver *Resolver
	store    *conversation.Store
	backend  Backend
	sinks    []events.EventSink

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewDriver(resolver *Resolver, store *conversation.Store, backend Backend, sinks ...events.EventSink) *Driver {
	return &Driver{
		resolver: resolver,
		store:    store,
		backend:  backend,
		sinks:    sinks,
		inFlight: make(map[string]struct{}),
	}
}

// AddSink registers an additional destination for streaming events.
func (d *Driver) AddSink(sink events.EventSink) {
	d.sinks = append(d.sinks, sink)
}

// SendResult reports where a completed exchange landed. AgentID and ChatID
// are always canonical; they differ from what the caller passed in when the
// send triggered provisioning.
type SendResult struct {
	AgentID  string
	AgentRef string
	ChatID   string
	Messages []*conversation.Message
	Text     string
}

func (d *Driver) acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.inFlight[key]; ok {
		return false
	}
	d.inFlight[key] = struct{}{}
	return true
}

func (d *Driver) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, key)
}

// Send resolves the target, applies the optimistic mutation, streams the
// assistant's reply into the store delta by delta, and commits or rolls
// back on the terminal event. Sends are serialized per chat; a second send
// into a chat with a stream in flight fails fast with ErrSendInFlight.
//
// The guard is taken on the caller-supplied identifier before resolution,
// so two sends racing on the same provisional id cannot both reach
// CreateChat and split one chat into two. The canonical id is guarded as
// well once known, since after the rename it is the id other callers hold.
func (d *Driver) Send(ctx context.Context, agentRef string, chatID string, userText string) (*SendResult, error) {
	if chatID != "" {
		if !d.acquire(chatID) {
			return nil, errors.Wrapf(ErrSendInFlight, "chat %s", chatID)
		}
		defer d.release(chatID)
	}

	agent, canonicalChatID, err := d.resolver.Resolve(ctx, agentRef, chatID)
	if err != nil {
		return nil, err
	}

	if canonicalChatID != chatID {
		if !d.acquire(canonicalChatID) {
			return nil, errors.Wrapf(ErrSendInFlight, "chat %s", canonicalChatID)
		}
		defer d.release(canonicalChatID)
	}

	// A canonical identifier handed in directly may not be live locally
	// yet, for instance when resuming a chat listed by the backend.
	if _, ok := d.store.Chat(agent.Name, canonicalChatID); !ok {
		chat := conversation.NewChat()
		chat.ID = canonicalChatID
		d.store.AddChat(agent.Name, chat)
	}

	tx := &streamingTransaction{
		store:    d.store,
		agentRef: agent.Name,
		chatID:   canonicalChatID,
	}
	if err := tx.begin(userText); err != nil {
		return nil, err
	}

	metadata := events.EventMetadata{
		ID:      uuid.New(),
		AgentID: agent.ID,
		ChatID:  canonicalChatID,
	}

	eventCh, err := d.backend.StreamMessage(ctx, agent.ID, canonicalChatID, api.SendMessageRequest{
		Role:    string(conversation.RoleUser),
		Content: userText,
	})
	if err != nil {
		tx.rollback()
		publishEvent(d.sinks, events.NewErrorEvent(metadata, err))
		return nil, &StreamError{ChatID: canonicalChatID, Err: err}
	}

	publishEvent(d.sinks, events.NewStartEvent(metadata))
	log.Debug().
		Str("agent_id", agent.ID).
		Str("chat_id", canonicalChatID).
		Msg("streaming exchange started")

	if err := d.consumeStream(ctx, tx, metadata, eventCh); err != nil {
		tx.rollback()
		return nil, &StreamError{ChatID: canonicalChatID, Err: err}
	}

	if err := tx.commit(); err != nil {
		return nil, err
	}
	publishEvent(d.sinks, events.NewFinalEvent(metadata, tx.completion()))

	return &SendResult{
		AgentID:  agent.ID,
		AgentRef: agent.Name,
		ChatID:   canonicalChatID,
		Messages: tx.messages,
		Text:     tx.completion(),
	}, nil
}

// consumeStream drains the event channel until a terminal event. Returning
// an error means the exchange must be rolled back; the matching error event
// has already been published.
func (d *Driver) consumeStream(ctx context.Context, tx *streamingTransaction, metadata events.EventMetadata, eventCh <-chan api.StreamEvent) error {
	for {
		select {
		case <-ctx.Done():
			publishEvent(d.sinks, events.NewInterruptEvent(metadata, tx.completion()))
			return ctx.Err()

		case event, ok := <-eventCh:
			if !ok {
				// The channel closing without a terminal marker means the
				// connection dropped mid-stream.
				err := errors.New("stream ended without completion")
				publishEvent(d.sinks, events.NewErrorEvent(metadata, err))
				return err
			}

			switch event.Type {
			case api.DeltaType:
				if err := tx.applyDelta(event.Content); err != nil {
					publishEvent(d.sinks, events.NewErrorEvent(metadata, err))
					return err
				}
				publishEvent(d.sinks, events.NewPartialCompletionEvent(metadata, event.Content, tx.completion()))

			case api.DoneType:
				return nil

			case api.ErrorType:
				err := errors.New(event.Message)
				publishEvent(d.sinks, events.NewErrorEvent(metadata, err))
				return err
			}
		}
	}
}

// LoadHistory pulls a chat's message history from the backend into the
// store. A fetch failure degrades to the local view instead of erroring:
// history is best-effort, sends are not.
func (d *Driver) LoadHistory(ctx context.Context, agentRef string, chatID string) ([]*conversation.Message, error) {
	agent, err := d.resolver.registry.Resolve(agentRef)
	if err != nil {
		return nil, err
	}

	// Provisional resources have no server-side history to load.
	if agent.Provisional() || conversation.IsProvisionalID(chatID) {
		if chat, ok := d.store.Chat(agent.Name, chatID); ok {
			return chat.Messages, nil
		}
		return nil, nil
	}

	infos, err := d.backend.GetMessages(ctx, agent.ID, chatID)
	if err != nil {
		log.Warn().Err(err).
			Str("agent_id", agent.ID).
			Str("chat_id", chatID).
			Msg("failed to load chat history, falling back to local view")
		if chat, ok := d.store.Chat(agent.Name, chatID); ok {
			return chat.Messages, nil
		}
		return nil, nil
	}

	messages := make([]*conversation.Message, 0, len(infos))
	for _, info := range infos {
		messages = append(messages, conversation.NewMessage(
			conversation.Role(info.Role), info.Content,
			conversation.WithID(info.ID), conversation.WithTime(info.Timestamp),
		))
	}

	if _, ok := d.store.Chat(agent.Name, chatID); !ok {
		chat := conversation.NewChat()
		chat.ID = chatID
		d.store.AddChat(agent.Name, chat)
	}
	if err := d.store.UpsertMessages(agent.Name, chatID, messages); err != nil {
		return nil, err
	}

	return messages, nil
}
