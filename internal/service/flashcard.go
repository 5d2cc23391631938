package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/repository"
)

// FlashcardService handles flashcard business logic.
type FlashcardService struct {
	cards *repository.FlashcardRepository
	decks *repository.DeckRepository
	log   *zap.Logger
	now   func() int64
}

// NewFlashcardService creates a new FlashcardService.
func NewFlashcardService(cards *repository.FlashcardRepository, decks *repository.DeckRepository, log *zap.Logger) *FlashcardService {
	return &FlashcardService{
		cards: cards,
		decks: decks,
		log:   log,
		now:   unixNow,
	}
}

// List returns the user's flashcards, optionally limited to one deck.
func (s *FlashcardService) List(ctx context.Context, userID int64, deckID *int64) ([]model.Flashcard, error) {
	if deckID != nil {
		if _, err := s.decks.GetByID(ctx, userID, *deckID); err != nil {
			return nil, translate(err)
		}
	}
	return s.cards.List(ctx, userID, repository.FlashcardFilter{DeckID: deckID})
}

// Create adds a card to a deck the user owns.
func (s *FlashcardService) Create(ctx context.Context, userID int64, req model.CreateFlashcardRequest) (model.Flashcard, error) {
	if _, err := s.decks.GetByID(ctx, userID, req.DeckID); err != nil {
		return model.Flashcard{}, translate(err)
	}

	now := s.now()
	card := model.Flashcard{
		UserID:     userID,
		DeckID:     req.DeckID,
		Question:   strings.TrimSpace(req.Question),
		Answer:     strings.TrimSpace(req.Answer),
		Difficulty: req.Difficulty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.cards.Create(ctx, &card); err != nil {
		return model.Flashcard{}, err
	}
	return card, nil
}

// Get returns one card.
func (s *FlashcardService) Get(ctx context.Context, userID, cardID int64) (model.Flashcard, error) {
	card, err := s.cards.GetByID(ctx, userID, cardID)
	if err != nil {
		return model.Flashcard{}, translate(err)
	}
	return *card, nil
}

// Update patches a card. Moving it requires the target deck to be owned too.
func (s *FlashcardService) Update(ctx context.Context, userID, cardID int64, req model.UpdateFlashcardRequest) (model.Flashcard, error) {
	card, err := s.cards.GetByID(ctx, userID, cardID)
	if err != nil {
		return model.Flashcard{}, translate(err)
	}

	if req.DeckID != nil && *req.DeckID != card.DeckID {
		if _, err := s.decks.GetByID(ctx, userID, *req.DeckID); err != nil {
			return model.Flashcard{}, translate(err)
		}
		card.DeckID = *req.DeckID
	}
	if req.Question != nil {
		card.Question = strings.TrimSpace(*req.Question)
	}
	if req.Answer != nil {
		card.Answer = strings.TrimSpace(*req.Answer)
	}
	if req.Difficulty != nil {
		card.Difficulty = *req.Difficulty
	}
	card.UpdatedAt = s.now()

	if err := s.cards.Update(ctx, card); err != nil {
		return model.Flashcard{}, translate(err)
	}
	return *card, nil
}

// Delete removes a card and its reviews.
func (s *FlashcardService) Delete(ctx context.Context, userID, cardID int64) error {
	return translate(s.cards.Delete(ctx, userID, cardID))
}
