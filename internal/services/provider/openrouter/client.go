// Package openrouter provides the OpenRouter streaming client.
package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/provider"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"

	// maxLineBytes bounds one upstream SSE line; annotation payloads can
	// get large.
	maxLineBytes = 1 << 20
)

// Config holds the configuration for the OpenRouter client.
type Config struct {
	BaseURL string
	APIKey  string
	// Referer and Title feed OpenRouter's attribution headers.
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// Client implements provider.Client against the OpenRouter API.
type Client struct {
	baseURL    string
	apiKey     string
	referer    string
	title      string
	httpClient *http.Client
}

// NewClient creates a new OpenRouter client.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 5 * time.Minute, // Longer timeout for streaming
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		referer:    config.Referer,
		title:      config.Title,
		httpClient: httpClient,
	}, nil
}

// Chat sends a conversation and returns the complete response.
func (c *Client) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResult, error) {
	reader, err := c.StreamChat(ctx, req)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var content, reasoning strings.Builder
	var annotations []provider.Annotation

	for {
		chunk, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stream: %w", err)
		}

		switch chunk.Type {
		case provider.ChunkTypeContent:
			content.WriteString(chunk.Content)
		case provider.ChunkTypeReasoning:
			reasoning.WriteString(chunk.Content)
		case provider.ChunkTypeAnnotations:
			annotations = append(annotations, chunk.Annotations...)
		}
	}

	return &provider.ChatResult{
		Content:     content.String(),
		Reasoning:   reasoning.String(),
		Annotations: annotations,
	}, nil
}

// StreamChat sends a conversation and returns a reader for the streamed
// response.
func (c *Client) StreamChat(ctx context.Context, req *provider.ChatRequest) (provider.StreamReader, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.errorFromResponse(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	return &streamReader{
		response: resp,
		scanner:  scanner,
	}, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

// setHeaders sets the required headers for OpenRouter requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}
}

// errorFromResponse extracts the provider's error message from a non-200
// response.
func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("openrouter returned %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("openrouter returned unexpected status %d", resp.StatusCode)
}

// chatCompletionRequest is the OpenRouter chat completions request body.
type chatCompletionRequest struct {
	Model     string            `json:"model"`
	Messages  []requestMessage  `json:"messages"`
	Stream    bool              `json:"stream"`
	Reasoning *reasoningOptions `json:"reasoning,omitempty"`
}

type reasoningOptions struct {
	Effort string `json:"effort,omitempty"`
}

// requestMessage is one history entry. Content is either a plain string or
// a list of multimodal content parts.
type requestMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// buildRequest maps a provider request onto the OpenRouter wire format.
func (c *Client) buildRequest(req *provider.ChatRequest) *chatCompletionRequest {
	out := &chatCompletionRequest{
		Model:    req.ModelID,
		Messages: make([]requestMessage, 0, len(req.Messages)),
		Stream:   true,
	}

	if req.UseReasoning {
		effort := string(req.Effort)
		if effort == "" {
			effort = string(provider.EffortMedium)
		}
		out.Reasoning = &reasoningOptions{Effort: effort}
	}

	for _, m := range req.Messages {
		out.Messages = append(out.Messages, buildMessage(m))
	}
	return out
}

// buildMessage converts a stored message, expanding image attachments into
// multimodal content parts.
func buildMessage(m *models.ChatMessage) requestMessage {
	images := m.Images
	if len(images) == 0 && m.ImageURL != "" {
		images = []models.ImageAttachment{{URL: m.ImageURL}}
	}

	if len(images) == 0 {
		return requestMessage{Role: string(m.Role), Content: m.Content}
	}

	parts := make([]contentPart, 0, len(images)+1)
	if m.Content != "" {
		parts = append(parts, contentPart{Type: "text", Text: m.Content})
	}
	for _, img := range images {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: img.URL},
		})
	}
	return requestMessage{Role: string(m.Role), Content: parts}
}

// streamChunk is one parsed line of the upstream SSE stream.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content     string                `json:"content"`
			Reasoning   string                `json:"reasoning"`
			Annotations []provider.Annotation `json:"annotations"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// streamReader implements the provider.StreamReader interface.
type streamReader struct {
	response *http.Response
	scanner  *bufio.Scanner
}

// Read reads the next tagged chunk from the stream.
func (r *streamReader) Read() (*provider.StreamChunk, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" || !strings.HasPrefix(line, dataPrefix) {
			// OpenRouter interleaves ": OPENROUTER PROCESSING" comments.
			continue
		}

		payload := strings.TrimPrefix(line, dataPrefix)
		if payload == doneSentinel {
			return nil, io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Skip malformed lines
			continue
		}

		if chunk.Error != nil {
			return nil, fmt.Errorf("openrouter stream error: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		switch {
		case delta.Reasoning != "":
			return &provider.StreamChunk{
				Type:    provider.ChunkTypeReasoning,
				Content: delta.Reasoning,
			}, nil
		case len(delta.Annotations) > 0:
			return &provider.StreamChunk{
				Type:        provider.ChunkTypeAnnotations,
				Annotations: delta.Annotations,
			}, nil
		case delta.Content != "":
			return &provider.StreamChunk{
				Type:    provider.ChunkTypeContent,
				Content: delta.Content,
			}, nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close closes the underlying response body.
func (r *streamReader) Close() error {
	if r.response != nil && r.response.Body != nil {
		return r.response.Body.Close()
	}
	return nil
}
