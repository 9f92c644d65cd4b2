package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseHandler(t *testing.T, lines []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, line := range lines {
			_, _ = w.Write([]byte("data: " + line + "\n\n"))
			flusher.Flush()
		}
	}
}

func TestStreamMessageEmitsDeltasInOrder(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"type":"delta","content":"Hello"}`,
		`{"type":"delta","content":", world"}`,
		`{"type":"done"}`,
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	events, err := client.StreamMessage(context.Background(), "claude", "chat-1", SendMessageRequest{
		Role:    "user",
		Content: "greet me",
	})
	require.NoError(t, err)

	var got []StreamEvent
	for event := range events {
		got = append(got, event)
	}
	require.Len(t, got, 3)
	assert.Equal(t, "Hello", got[0].Content)
	assert.Equal(t, ", world", got[1].Content)
	assert.Equal(t, DoneType, got[2].Type)
}

func TestStreamMessageErrorMarker(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"type":"delta","content":"par"}`,
		`{"type":"error","message":"upstream timeout"}`,
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	events, err := client.StreamMessage(context.Background(), "claude", "chat-1", SendMessageRequest{Role: "user", Content: "x"})
	require.NoError(t, err)

	var got []StreamEvent
	for event := range events {
		got = append(got, event)
	}
	require.Len(t, got, 2)
	assert.Equal(t, ErrorType, got[1].Type)
	assert.Equal(t, "upstream timeout", got[1].Message)
}

func TestStreamMessageNonOKIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"chat not found"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.StreamMessage(context.Background(), "claude", "nope", SendMessageRequest{Role: "user", Content: "x"})
	require.Error(t, err)
	assert.Equal(t, "chat not found", err.Error())
}

func TestStreamMessageIgnoresMalformedLines(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`not json`,
		`{"type":"delta","content":"ok"}`,
		`{"type":"done"}`,
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	events, err := client.StreamMessage(context.Background(), "claude", "chat-1", SendMessageRequest{Role: "user", Content: "x"})
	require.NoError(t, err)

	var got []StreamEvent
	for event := range events {
		got = append(got, event)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "ok", got[0].Content)
}
