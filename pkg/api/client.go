package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Client talks to the SolMind backend REST API. Every request carries the
// wallet address as an opaque identity header; the client does not interpret
// it beyond that.
type Client struct {
	httpClient    *http.Client
	BaseURL       string
	walletAddress string
}

const walletAddressHeader = "X-Wallet-Address"

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithWalletAddress(address string) ClientOption {
	return func(c *Client) {
		c.walletAddress = address
	}
}

// NewClient initializes and returns a new API client.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported base URL scheme %q", u.Scheme)
	}

	ret := &Client{
		httpClient: &http.Client{},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, option := range options {
		option(ret)
	}

	return ret, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.walletAddress != "" {
		req.Header.Set(walletAddressHeader, c.walletAddress)
	}
}

func (c *Client) newRequest(ctx context.Context, method string, endpoint string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	return req, nil
}

// do executes the request and decodes a JSON response into out (when out is
// non-nil). Non-2xx responses are turned into errors carrying the backend's
// message field when present.
func (c *Client) do(req *http.Request, out interface{}) error {
	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("sending backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "failed to decode backend response")
	}

	return nil
}

func decodeAPIError(statusCode int, body []byte) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Message != "" {
		return errors.New(errorResp.Message)
	}
	return errors.Errorf("HTTP error: status %d", statusCode)
}

func (c *Client) ListAgents(ctx context.Context) ([]AgentInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/agents/", nil)
	if err != nil {
		return nil, err
	}

	var agents []AgentInfo
	if err := c.do(req, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *Client) CreateAgent(ctx context.Context, create CreateAgentRequest) (*AgentInfo, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/agents/", create)
	if err != nil {
		return nil, err
	}

	var agent AgentInfo
	if err := c.do(req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *Client) ListChats(ctx context.Context, agentID string) ([]ChatInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/agents/%s/chats", agentID), nil)
	if err != nil {
		return nil, err
	}

	var chats []ChatInfo
	if err := c.do(req, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) CreateChat(ctx context.Context, agentID string, create CreateChatRequest) (*ChatInfo, error) {
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/api/v1/agents/%s/chats", agentID), create)
	if err != nil {
		return nil, err
	}

	var chat ChatInfo
	if err := c.do(req, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *Client) GetMessages(ctx context.Context, agentID string, chatID string) ([]MessageInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/agents/%s/chats/%s/messages", agentID, chatID), nil)
	if err != nil {
		return nil, err
	}

	var messages []MessageInfo
	if err := c.do(req, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) DeleteChat(ctx context.Context, agentID string, chatID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/agents/%s/chats/%s", agentID, chatID), nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}
