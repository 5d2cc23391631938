package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cardchat/cardchat-go/internal/llm"
	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/repository"
)

var (
	ErrNothingToGenerate = errors.New("chat has no messages")
	ErrExtraction        = errors.New("could not read flashcards from llm response")
)

// GenerateService turns chat content into flashcards in the chat's deck.
// Identical requests in flight at the same time share one LLM call.
type GenerateService struct {
	chats  *repository.ChatRepository
	decks  *repository.DeckRepository
	cards  *repository.FlashcardRepository
	users  *UserService
	llm    Completer
	log    *zap.Logger
	now    func() int64
	flight singleflight.Group
}

// NewGenerateService creates a new GenerateService.
func NewGenerateService(chats *repository.ChatRepository, decks *repository.DeckRepository, cards *repository.FlashcardRepository, users *UserService, completer Completer, log *zap.Logger) *GenerateService {
	return &GenerateService{
		chats: chats,
		decks: decks,
		cards: cards,
		users: users,
		llm:   completer,
		log:   log,
		now:   unixNow,
	}
}

// GenerateForChat builds flashcards from the whole transcript of a chat.
func (s *GenerateService) GenerateForChat(ctx context.Context, userID, chatID int64) (model.GenerateFlashcardsResponse, error) {
	key := fmt.Sprintf("chat:%d:%d", userID, chatID)
	return s.do(ctx, key, func(ctx context.Context) (model.GenerateFlashcardsResponse, error) {
		chat, err := s.chats.GetByID(ctx, userID, chatID)
		if err != nil {
			return model.GenerateFlashcardsResponse{}, translate(err)
		}

		msgs, err := s.chats.ListMessages(ctx, chat.ID)
		if err != nil {
			return model.GenerateFlashcardsResponse{}, err
		}
		if len(msgs) == 0 {
			return model.GenerateFlashcardsResponse{}, ErrNothingToGenerate
		}

		return s.generate(ctx, chat, llm.Transcript(toLLMMessages(msgs)))
	})
}

// GenerateForMessage builds flashcards from a single message of a chat.
func (s *GenerateService) GenerateForMessage(ctx context.Context, userID, chatID, messageID int64) (model.GenerateFlashcardsResponse, error) {
	key := fmt.Sprintf("message:%d:%d:%d", userID, chatID, messageID)
	return s.do(ctx, key, func(ctx context.Context) (model.GenerateFlashcardsResponse, error) {
		chat, err := s.chats.GetByID(ctx, userID, chatID)
		if err != nil {
			return model.GenerateFlashcardsResponse{}, translate(err)
		}

		msg, err := s.chats.GetMessage(ctx, chat.ID, messageID)
		if err != nil {
			return model.GenerateFlashcardsResponse{}, translate(err)
		}

		return s.generate(ctx, chat, msg.Content)
	})
}

// do runs fn once per key among concurrent callers. The shared call is
// detached from any single caller's cancellation.
func (s *GenerateService) do(ctx context.Context, key string, fn func(context.Context) (model.GenerateFlashcardsResponse, error)) (model.GenerateFlashcardsResponse, error) {
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return model.GenerateFlashcardsResponse{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.log.Debug("flashcard generation shared", zap.String("key", key))
		}
		if res.Err != nil {
			return model.GenerateFlashcardsResponse{}, res.Err
		}
		return res.Val.(model.GenerateFlashcardsResponse), nil
	}
}

func (s *GenerateService) generate(ctx context.Context, chat *model.Chat, material string) (model.GenerateFlashcardsResponse, error) {
	apiKey, err := s.users.VendorKey(ctx, chat.UserID)
	if err != nil {
		return model.GenerateFlashcardsResponse{}, err
	}

	reply, err := s.llm.Complete(ctx, apiKey, llm.FlashcardRequest(material))
	if err != nil {
		return model.GenerateFlashcardsResponse{}, translateLLM(err)
	}

	drafts, err := llm.ExtractFlashcards(reply)
	if err != nil {
		s.log.Warn("flashcard extraction failed",
			zap.Int64("chat_id", chat.ID), zap.Int("reply_len", len(reply)), zap.Error(err))
		return model.GenerateFlashcardsResponse{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	now := s.now()
	deck, err := ensureChatDeck(ctx, s.decks, chat, now)
	if err != nil {
		return model.GenerateFlashcardsResponse{}, fmt.Errorf("ensuring chat deck: %w", err)
	}

	cards := make([]model.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		q, a := strings.TrimSpace(d.Question), strings.TrimSpace(d.Answer)
		if q == "" || a == "" {
			continue
		}
		cards = append(cards, model.Flashcard{
			UserID:    chat.UserID,
			DeckID:    deck.ID,
			Question:  q,
			Answer:    a,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.cards.CreateBatch(ctx, cards); err != nil {
		return model.GenerateFlashcardsResponse{}, fmt.Errorf("storing flashcards: %w", err)
	}

	s.log.Info("flashcards generated",
		zap.Int64("user_id", chat.UserID), zap.Int64("chat_id", chat.ID),
		zap.Int64("deck_id", deck.ID), zap.Int("count", len(cards)))

	return model.GenerateFlashcardsResponse{Deck: deck, Flashcards: cards}, nil
}
