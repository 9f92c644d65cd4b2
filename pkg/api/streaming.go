package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type StreamEventType string

const (
	// DeltaType carries one text increment of the assistant's reply.
	DeltaType StreamEventType = "delta"
	// DoneType is the terminal completion marker.
	DoneType StreamEventType = "done"
	// ErrorType is the terminal error marker.
	ErrorType StreamEventType = "error"
)

// StreamEvent is one event of the message-send stream. Events arrive in wire
// order on a single channel; a done or error event is always last.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	Content string          `json:"content,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (s StreamEvent) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", string(s.Type))
	if s.Content != "" {
		e.Str("content", s.Content)
	}
	if s.Message != "" {
		e.Str("message", s.Message)
	}
}

var _ zerolog.LogObjectMarshaler = StreamEvent{}

// StreamMessage posts a user message and returns a channel of streaming
// events. The channel is closed when the server ends the stream or the
// context is cancelled. A non-2xx response is returned as an error before
// any event is emitted.
func (c *Client) StreamMessage(ctx context.Context, agentID string, chatID string, send SendMessageRequest) (<-chan StreamEvent, error) {
	endpoint := fmt.Sprintf("/api/v1/agents/%s/chats/%s/messages", agentID, chatID)
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, send)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	events := make(chan StreamEvent)
	go streamEvents(ctx, resp, events)

	return events, nil
}

func streamEvents(ctx context.Context, resp *http.Response, events chan StreamEvent) {
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	defer close(events)

	reader := bufio.NewReader(resp.Body)
	eventCount := 0
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF && err != context.Canceled {
				log.Debug().Err(err).Msg("unexpected error reading streaming response")
			}
			log.Debug().Int("total_events", eventCount).Msg("streaming reader finished")
			return
		}

		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}

		var event StreamEvent
		if parseErr := json.Unmarshal(line[6:], &event); parseErr != nil {
			log.Debug().Err(parseErr).Msg("failed to parse stream event")
			continue
		}
		eventCount++
		log.Trace().Object("event", event).Int("event_number", eventCount).Msg("parsed stream event")

		select {
		case events <- event:
		case <-ctx.Done():
			log.Debug().Msg("context cancelled, stopping streaming")
			return
		}

		if event.Type == DoneType || event.Type == ErrorType {
			return
		}
	}
}
