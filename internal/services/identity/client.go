// Package identity provides bearer-token verification against the
// identity service.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuthUser is the decoded identity of an authenticated user.
type AuthUser struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Verifier decodes a signed bearer token into an AuthUser. Implementations
// fail closed: any invalid, expired, or malformed token is an error.
type Verifier interface {
	Verify(ctx context.Context, token string) (*AuthUser, error)
}

// ClientConfig holds the configuration for the identity client.
type ClientConfig struct {
	// BaseURL is the URL of the identity service.
	BaseURL string
	// Timeout bounds one verification call.
	Timeout time.Duration
	// HTTPClient overrides the default client, used in tests.
	HTTPClient *http.Client
}

// Client verifies tokens by forwarding them to the identity service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new identity client.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}, nil
}

// Verify decodes the token by POSTing it to the identity service. Any
// non-200 response or undecodable body fails verification.
func (c *Client) Verify(ctx context.Context, token string) (*AuthUser, error) {
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}

	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tokens/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token rejected with status %d", resp.StatusCode)
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}
	if user.UID == "" {
		return nil, fmt.Errorf("verification response missing uid")
	}
	return &user, nil
}
