package api

import "time"

// AgentInfo is an agent as reported by the backend.
type AgentInfo struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	Platform         string `json:"platform"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}

// CreateAgentRequest registers a user-supplied model endpoint with the backend.
// The API key is sent once at creation time and never returned.
type CreateAgentRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Platform    string `json:"platform"`
	APIKey      string `json:"api_key"`
	Model       string `json:"model,omitempty"`
}

// ChatInfo is a chat summary as returned by the chat listing endpoint.
// Messages is only populated by endpoints that inline the history.
type ChatInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	LastMessage  string        `json:"last_message"`
	Timestamp    time.Time     `json:"timestamp"`
	MessageCount int           `json:"message_count"`
	Messages     []MessageInfo `json:"messages,omitempty"`
}

type CreateChatRequest struct {
	Name       string `json:"name"`
	MemorySize string `json:"memory_size,omitempty"`
}

type MessageInfo struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type SendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrorResponse is the backend's error body shape.
type ErrorResponse struct {
	Message string `json:"message"`
}
