package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClientError represents an error from the Gemini client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeInvalidKey
	ErrTypeRateLimited
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrInvalidKey    = &ClientError{Type: ErrTypeInvalidKey, Message: "API key rejected by provider"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Message: "rate limit or quota exceeded"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrEmptyResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "model returned an empty response"}
)

// Config holds configuration options for the Gemini client.
type Config struct {
	// BaseURL of the API (default: https://generativelanguage.googleapis.com)
	BaseURL string

	// Model identifier (default: "gemini-2.5-flash")
	Model string

	// Temperature for generation (default: 0.7)
	Temperature float64

	// Timeout for requests (default: 60s)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://generativelanguage.googleapis.com",
		Model:       "gemini-2.5-flash",
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}
}

// Client handles communication with the Gemini generateContent API. The
// caller supplies the API key per request; the client holds no credentials.
// Safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a client with the given configuration. Zero values fall
// back to defaults.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.config.Model
}

// Generate submits a system instruction, optional prior history and a new
// user question, and returns the generated text. No retries: a failed call
// is surfaced immediately.
func (c *Client) Generate(ctx context.Context, apiKey, system string, history []Content, question string) (string, error) {
	contents := make([]Content, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, UserText(question))

	req := &GenerateRequest{
		Contents:         contents,
		GenerationConfig: &GenerationConfig{Temperature: c.config.Temperature},
	}
	if system != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}

	resp, err := c.GenerateContent(ctx, apiKey, req)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// GenerateContent performs a raw generateContent call.
func (c *Client) GenerateContent(ctx context.Context, apiKey string, genReq *GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	url := c.config.BaseURL + "/v1beta/models/" + c.config.Model + ":generateContent?key=" + apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, resp.Body)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

func (c *Client) statusError(status int, body io.Reader) error {
	message := ""
	var envelope apiError
	if err := json.NewDecoder(body).Decode(&envelope); err == nil {
		message = envelope.Error.Message
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		if message != "" {
			return &ClientError{Type: ErrTypeInvalidKey, Message: message}
		}
		return ErrInvalidKey
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if message == "" {
			message = "unexpected status " + http.StatusText(status)
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: message}
	}
}
