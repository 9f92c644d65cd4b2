package events

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRouterDeliversPublishedEvents(t *testing.T) {
	router, err := NewEventRouter()
	require.NoError(t, err)
	defer func() {
		_ = router.Close()
	}()

	received := make(chan Event, 8)
	router.AddHandler("collector", ChatTopic, func(msg *message.Message) error {
		defer msg.Ack()
		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}
		received <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	sink := NewWatermillSink(router.Publisher, ChatTopic)
	metadata := EventMetadata{ID: uuid.New(), ChatID: "chat-1"}
	require.NoError(t, sink.PublishEvent(NewStartEvent(metadata)))
	require.NoError(t, sink.PublishEvent(NewPartialCompletionEvent(metadata, "hi", "hi")))
	require.NoError(t, sink.PublishEvent(NewFinalEvent(metadata, "hi")))

	types := []EventType{}
	for i := 0; i < 3; i++ {
		select {
		case e := <-received:
			types = append(types, e.Type())
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.Equal(t, []EventType{EventTypeStart, EventTypePartialCompletion, EventTypeFinal}, types)
}

func TestStepPrinterRendersStream(t *testing.T) {
	var sb strings.Builder
	printer := StepPrinterFunc("", &sb)

	metadata := EventMetadata{ID: uuid.New()}
	for _, event := range []Event{
		NewStartEvent(metadata),
		NewPartialCompletionEvent(metadata, "hello", "hello"),
		NewPartialCompletionEvent(metadata, " world", "hello world"),
		NewFinalEvent(metadata, "hello world"),
	} {
		payload, err := json.Marshal(event)
		require.NoError(t, err)
		require.NoError(t, printer(message.NewMessage("1", payload)))
	}

	assert.Equal(t, "hello world\n", sb.String())
}
