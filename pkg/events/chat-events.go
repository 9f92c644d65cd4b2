package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStart to EventTypeFinal cover one streaming exchange.
	EventTypeStart             EventType = "start"
	EventTypePartialCompletion EventType = "partial"
	EventTypeFinal             EventType = "final"
	EventTypeError             EventType = "error"
	EventTypeInterrupt         EventType = "interrupt"

	// Reconciliation events, published whenever a provisional resource
	// becomes canonical.
	EventTypeAgentProvisioned EventType = "agent-provisioned"
	EventTypeChatCreated      EventType = "chat-created"
	EventTypeChatRenamed      EventType = "chat-renamed"
)

// Standard topics on the event router.
const (
	ChatTopic           = "chat"
	ReconciliationTopic = "reconciliation"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// raw JSON the event was deserialized from, if any
	payload []byte
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

var _ Event = &EventImpl{}

// EventMetadata is carried by every event so subscribers can correlate it
// with a send operation.
type EventMetadata struct {
	ID      uuid.UUID `json:"message_id"`
	AgentID string    `json:"agent_id,omitempty"`
	ChatID  string    `json:"chat_id,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.AgentID != "" {
		e.Str("agent_id", em.AgentID)
	}
	if em.ChatID != "" {
		e.Str("chat_id", em.ChatID)
	}
}

type EventStreamStart struct {
	EventImpl
}

func NewStartEvent(metadata EventMetadata) *EventStreamStart {
	return &EventStreamStart{
		EventImpl: EventImpl{Type_: EventTypeStart, Metadata_: metadata},
	}
}

var _ Event = &EventStreamStart{}

// EventPartialCompletion carries one text increment together with the
// completion accumulated so far.
type EventPartialCompletion struct {
	EventImpl
	Delta      string `json:"delta"`
	Completion string `json:"completion"`
}

func NewPartialCompletionEvent(metadata EventMetadata, delta string, completion string) *EventPartialCompletion {
	return &EventPartialCompletion{
		EventImpl:  EventImpl{Type_: EventTypePartialCompletion, Metadata_: metadata},
		Delta:      delta,
		Completion: completion,
	}
}

var _ Event = &EventPartialCompletion{}

type EventFinal struct {
	EventImpl
	Text string `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, text string) *EventFinal {
	return &EventFinal{
		EventImpl: EventImpl{Type_: EventTypeFinal, Metadata_: metadata},
		Text:      text,
	}
}

var _ Event = &EventFinal{}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	return &EventError{
		EventImpl:   EventImpl{Type_: EventTypeError, Metadata_: metadata},
		ErrorString: err.Error(),
	}
}

var _ Event = &EventError{}

type EventInterrupt struct {
	EventImpl
	Text string `json:"text"`
}

func NewInterruptEvent(metadata EventMetadata, text string) *EventInterrupt {
	return &EventInterrupt{
		EventImpl: EventImpl{Type_: EventTypeInterrupt, Metadata_: metadata},
		Text:      text,
	}
}

var _ Event = &EventInterrupt{}

// EventAgentProvisioned announces that a pending agent now has a canonical
// identifier. The credential is gone by the time this event is published.
type EventAgentProvisioned struct {
	EventImpl
	OldID string `json:"old_id"`
	NewID string `json:"new_id"`
}

func NewAgentProvisionedEvent(metadata EventMetadata, oldID string, newID string) *EventAgentProvisioned {
	return &EventAgentProvisioned{
		EventImpl: EventImpl{Type_: EventTypeAgentProvisioned, Metadata_: metadata},
		OldID:     oldID,
		NewID:     newID,
	}
}

var _ Event = &EventAgentProvisioned{}

type EventChatCreated struct {
	EventImpl
	ChatID string `json:"chat_id"`
}

func NewChatCreatedEvent(metadata EventMetadata, chatID string) *EventChatCreated {
	return &EventChatCreated{
		EventImpl: EventImpl{Type_: EventTypeChatCreated, Metadata_: metadata},
		ChatID:    chatID,
	}
}

var _ Event = &EventChatCreated{}

// EventChatRenamed announces a provisional→canonical chat identifier
// change. Every holder of the old identifier must apply the rename; the
// new identifier is terminal.
type EventChatRenamed struct {
	EventImpl
	AgentRef string `json:"agent_ref"`
	OldID    string `json:"old_id"`
	NewID    string `json:"new_id"`
}

func NewChatRenamedEvent(metadata EventMetadata, agentRef string, oldID string, newID string) *EventChatRenamed {
	return &EventChatRenamed{
		EventImpl: EventImpl{Type_: EventTypeChatRenamed, Metadata_: metadata},
		AgentRef:  agentRef,
		OldID:     oldID,
		NewID:     newID,
	}
}

var _ Event = &EventChatRenamed{}

// NewEventFromJson re-hydrates a typed event from a watermill payload.
func NewEventFromJson(b []byte) (Event, error) {
	var hdr struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(b, &hdr); err != nil {
		return nil, err
	}

	switch hdr.Type {
	case EventTypeStart:
		return decodeEvent[EventStreamStart](b)
	case EventTypePartialCompletion:
		return decodeEvent[EventPartialCompletion](b)
	case EventTypeFinal:
		return decodeEvent[EventFinal](b)
	case EventTypeError:
		return decodeEvent[EventError](b)
	case EventTypeInterrupt:
		return decodeEvent[EventInterrupt](b)
	case EventTypeAgentProvisioned:
		return decodeEvent[EventAgentProvisioned](b)
	case EventTypeChatCreated:
		return decodeEvent[EventChatCreated](b)
	case EventTypeChatRenamed:
		return decodeEvent[EventChatRenamed](b)
	}

	return nil, fmt.Errorf("unknown event type %q", hdr.Type)
}

type payloadSetter interface {
	setPayload([]byte)
}

func (e *EventImpl) setPayload(b []byte) {
	e.payload = b
}

func decodeEvent[T any, PT interface {
	*T
	Event
	payloadSetter
}](b []byte) (Event, error) {
	ret := PT(new(T))
	if err := json.Unmarshal(b, ret); err != nil {
		return nil, err
	}
	ret.setPayload(b)
	return ret, nil
}
