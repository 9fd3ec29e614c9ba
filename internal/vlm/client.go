// Package vlm is a stateless client for an OpenAI-compatible chat/completions
// endpoint with vision support. Every call builds a complete request; there
// is no conversation memory.
package vlm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	// DefaultTimeout bounds a single VLM request.
	DefaultTimeout = 120 * time.Second

	// DefaultRetryDelay is the fixed pause between the two attempts.
	DefaultRetryDelay = 5 * time.Second

	// maxAttempts is the total attempt budget: one call plus one retry for
	// timeout/transient failures.
	maxAttempts = 2
)

var thinkPattern = regexp.MustCompile(`(?is)<think>.*?</think>`)

// StripThinkingTags removes <think>...</think> reasoning blocks from a VLM
// response and trims surrounding whitespace.
func StripThinkingTags(text string) string {
	return strings.TrimSpace(thinkPattern.ReplaceAllString(text, ""))
}

// Config carries every tunable the client needs. No process-wide state.
type Config struct {
	APIURL          string
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxTokens       int
	Temperature     float64
	RepeatPenalty   float64 // provider default 1.0; only sent when different
	PresencePenalty float64 // provider default 0.0; only sent when different
	EnableThinking  bool
	RetryDelay      time.Duration
}

// Client sends multimodal chat requests to the configured endpoint.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a client from cfg, filling in defaults for zero values.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.RepeatPenalty == 0 {
		cfg.RepeatPenalty = 1.0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// OpenAI-compatible wire types.

type chatRequest struct {
	Model           string        `json:"model"`
	Messages        []chatMessage `json:"messages"`
	Stream          bool          `json:"stream"`
	Temperature     float64       `json:"temperature"`
	MaxTokens       int           `json:"max_tokens"`
	RepeatPenalty   *float64      `json:"repeat_penalty,omitempty"`
	PresencePenalty *float64      `json:"presence_penalty,omitempty"`
	EnableThinking  bool          `json:"enable_thinking,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string for system, []contentPart for user
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ProcessImage sends one image plus prompts to the VLM and returns the
// extracted text. Timeout and transient failures get exactly one retry after
// a fixed delay; auth, not-found, client, and protocol failures fail
// immediately. After the attempt budget is exhausted the last failure is
// returned wrapped.
//
// Cancellation is coarse: ctx gates starting an attempt and the backoff
// sleep between attempts, but an in-flight request is never interrupted —
// stages cancel at page boundaries and the current page's result must not
// be lost. The client timeout alone bounds each request.
func (c *Client) ProcessImage(ctx context.Context, imageDataURI, userPrompt, systemPrompt string) (string, error) {
	payload := c.buildPayload(imageDataURI, userPrompt, systemPrompt)

	var text string
	err := retry.Do(
		func() error {
			var err error
			text, err = c.sendRequest(ctx, payload)
			return err
		},
		retry.Attempts(maxAttempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("vlm request failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		if isRetryable(err) {
			// Retry budget spent; surface the last underlying cause.
			return "", fmt.Errorf("vlm request failed after %d attempts: %w", maxAttempts, err)
		}
		return "", err
	}
	return text, nil
}

// buildPayload constructs a fresh OpenAI-compatible multimodal payload:
// optional system message, then one user message holding the prompt text and
// the image reference. Sampling-penalty fields are included only when they
// differ from the provider default, keeping requests compatible with
// providers that reject unknown fields.
func (c *Client) buildPayload(imageDataURI, userPrompt, systemPrompt string) *chatRequest {
	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: userPrompt},
			{Type: "image_url", ImageURL: &imageURL{URL: imageDataURI}},
		},
	})

	req := &chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Stream:      false,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	if c.cfg.RepeatPenalty != 1.0 {
		req.RepeatPenalty = &c.cfg.RepeatPenalty
	}
	if c.cfg.PresencePenalty != 0.0 {
		req.PresencePenalty = &c.cfg.PresencePenalty
	}
	if c.cfg.EnableThinking {
		req.EnableThinking = true
	}
	return req
}

// sendRequest executes one HTTP POST and classifies any failure.
func (c *Client) sendRequest(ctx context.Context, payload *chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Kind: KindProtocol, Message: "failed to marshal request", Err: err}
	}

	// Detached from the caller's cancellation so an in-flight request runs
	// to completion; the client timeout still applies.
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindClient, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyNetworkError(err, c.cfg.Timeout)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransient, Message: "failed to read response body", Err: err}
	}

	if err := classifyStatus(resp.StatusCode, respBody); err != nil {
		return "", err
	}

	return extractText(respBody)
}

// classifyNetworkError maps transport-level failures onto the taxonomy.
func classifyNetworkError(err error, timeout time.Duration) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &Error{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("request timed out after %s", timeout),
			Err:     err,
		}
	}
	return &Error{Kind: KindTransient, Message: "connection failed", Err: err}
}

// classifyStatus maps HTTP status codes onto the taxonomy. Anything below
// 400 counts as success; the body decode catches unusable responses.
func classifyStatus(code int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	switch {
	case code < http.StatusBadRequest:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &Error{Kind: KindAuth, Status: code, Message: "authentication failed"}
	case code == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: code, Message: "model or endpoint not found"}
	case code >= 500:
		return &Error{Kind: KindTransient, Status: code, Message: snippet}
	default:
		return &Error{Kind: KindClient, Status: code, Message: snippet}
	}
}

// extractText pulls the first choice's content out of a chat/completions
// response and strips any reasoning block.
func extractText(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Kind: KindProtocol, Message: "failed to decode response", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindProtocol, Message: "response has no choices"}
	}
	return StripThinkingTags(resp.Choices[0].Message.Content), nil
}
