package service

import (
	"context"

	"github.com/cardchat/cardchat-go/internal/llm"
)

// Completer is the part of the LLM client the services depend on.
type Completer interface {
	Complete(ctx context.Context, apiKey string, req llm.Request) (string, error)
	Verify(ctx context.Context, apiKey string) error
}

var _ Completer = (*llm.Client)(nil)
