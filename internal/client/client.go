package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/streamchat/chat-service/internal/domain/models"
)

// StreamRequest is the request body of the streaming endpoint.
type StreamRequest struct {
	ThreadID        string                   `json:"threadId,omitempty"`
	Content         string                   `json:"content,omitempty"`
	ImageURL        string                   `json:"imageUrl,omitempty"`
	Images          []models.ImageAttachment `json:"images,omitempty"`
	ModelID         string                   `json:"modelId"`
	UseReasoning    bool                     `json:"useReasoning,omitempty"`
	ReasoningEffort string                   `json:"reasoningEffort,omitempty"`
}

// StreamClient opens streamed exchanges against a running chat service.
type StreamClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewStreamClient creates a client for the given service base URL. The
// token is sent as a bearer credential.
func NewStreamClient(baseURL, token string, httpClient *http.Client) *StreamClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &StreamClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Stream sends one message and consumes the event stream through the
// handlers. Network-level failures are reported to OnError and returned.
func (c *StreamClient) Stream(ctx context.Context, req *StreamRequest, handlers Handlers) error {
	consumer := NewConsumer(handlers)

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal stream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chat/messages/stream", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		consumer.reportError(err)
		return err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("stream request rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		consumer.reportError(err)
		return err
	}

	return consumer.Consume(resp.Body)
}
