package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 4096
	verifyMaxTokens  = 1
)

var (
	ErrTimeout           = errors.New("llm request timed out")
	ErrUnauthorized      = errors.New("api key rejected by provider")
	ErrRateLimited       = errors.New("llm provider rate limit exceeded")
	ErrUpstream          = errors.New("llm provider error")
	ErrEmptyResponse     = errors.New("llm returned no text")
	ErrMalformedResponse = errors.New("malformed llm response")
	ErrMissingAPIKey     = errors.New("api key not configured")
)

// Message is one turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request.
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client talks to the Anthropic Messages API. The vendor key is supplied
// per call because every user brings their own.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// errorBody is the vendor's error envelope.
type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a new Client. Retries are disabled: a failed call fails
// the request that made it.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Complete sends req and returns the concatenated text blocks of the reply.
// The call is bounded by the client timeout.
func (c *Client) Complete(ctx context.Context, apiKey string, req Request) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  toParams(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.api.Messages.New(ctx, params, option.WithAPIKey(apiKey))
	if err != nil {
		return "", c.callError(ctx, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// Verify checks that the provider accepts apiKey with a one-token request.
func (c *Client) Verify(ctx context.Context, apiKey string) error {
	_, err := c.Complete(ctx, apiKey, Request{
		Messages:  []Message{{Role: "user", Content: "ping"}},
		MaxTokens: verifyMaxTokens,
	})
	if errors.Is(err, ErrEmptyResponse) {
		return nil
	}
	return err
}

func toParams(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}

func (c *Client) callError(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return statusError(apiErr.StatusCode, apiErr.RawJSON())
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func statusError(status int, raw string) error {
	msg := strings.TrimSpace(raw)
	var body errorBody
	if json.Unmarshal([]byte(raw), &body) == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	default:
		return fmt.Errorf("%w (%d): %s", ErrUpstream, status, msg)
	}
}
