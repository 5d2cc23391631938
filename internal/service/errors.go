package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/cardchat/cardchat-go/internal/llm"
	"github.com/cardchat/cardchat-go/internal/repository"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrChatNotFound      = errors.New("chat not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrDeckNotFound      = errors.New("deck not found")
	ErrFlashcardNotFound = errors.New("flashcard not found")

	ErrAPIKeyMissing  = errors.New("api key not configured")
	ErrAPIKeyRejected = errors.New("api key rejected by provider")
	ErrLLMTimeout     = errors.New("llm request timed out")
)

// translate maps repository sentinels onto the service's own.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrChatNotFound):
		return ErrChatNotFound
	case errors.Is(err, repository.ErrMessageNotFound):
		return ErrMessageNotFound
	case errors.Is(err, repository.ErrDeckNotFound):
		return ErrDeckNotFound
	case errors.Is(err, repository.ErrFlashcardNotFound):
		return ErrFlashcardNotFound
	}
	return err
}

// translateLLM maps client errors the caller can act on; anything else is wrapped.
func translateLLM(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, llm.ErrMissingAPIKey):
		return ErrAPIKeyMissing
	case errors.Is(err, llm.ErrUnauthorized):
		return ErrAPIKeyRejected
	case errors.Is(err, llm.ErrTimeout):
		return ErrLLMTimeout
	}
	return fmt.Errorf("llm completion: %w", err)
}

func unixNow() int64 {
	return time.Now().Unix()
}
