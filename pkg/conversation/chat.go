package conversation

import (
	"fmt"
	"strings"
	"time"
)

// ProvisionalIDPrefix marks chat identifiers that exist only client-side.
// The backend issues the canonical identifier on first use.
const ProvisionalIDPrefix = "new-"

const defaultChatName = "New Chat"

// NewProvisionalID generates a placeholder chat identifier. It is
// recognizable by its reserved prefix and replaced by the server-issued one
// during reconciliation.
func NewProvisionalID() string {
	return fmt.Sprintf("%s%d", ProvisionalIDPrefix, time.Now().UnixMilli())
}

// IsProvisionalID reports whether the identifier is a local placeholder.
func IsProvisionalID(id string) bool {
	return id == "" || strings.HasPrefix(id, ProvisionalIDPrefix)
}

// Chat is one conversation thread belonging to one agent. The derived
// fields (MessageCount, LastMessage, LastActivityAt) are recomputed by the
// store on every message upsert and never set directly.
type Chat struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	MemorySize     string     `json:"memory_size,omitempty"`
	Messages       []*Message `json:"messages"`
	MessageCount   int        `json:"message_count"`
	LastMessage    string     `json:"last_message"`
	LastActivityAt time.Time  `json:"timestamp"`
}

// NewChat creates an empty provisional chat.
func NewChat() *Chat {
	return &Chat{
		ID:             NewProvisionalID(),
		Name:           defaultChatName,
		MemorySize:     "Small",
		LastActivityAt: time.Now(),
	}
}

const (
	lastMessagePreviewLen = 100
	autoTitleLen          = 30
)

// recomputeDerived refreshes the chat's summary fields from its message
// list. A chat still carrying the default name is titled after its first
// message.
func (c *Chat) recomputeDerived() {
	c.MessageCount = len(c.Messages)
	if len(c.Messages) == 0 {
		c.LastMessage = ""
		return
	}

	last := c.Messages[len(c.Messages)-1]
	c.LastMessage = truncate(last.Content, lastMessagePreviewLen)
	c.LastActivityAt = last.Time

	if c.Name == defaultChatName {
		c.Name = truncate(c.Messages[0].Content, autoTitleLen) + "..."
	}
}

// truncate cuts after n characters, never inside a multi-byte rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
