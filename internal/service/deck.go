package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/repository"
)

const chatDeckDescription = "Flashcards generated from chat"

// DeckService handles deck business logic.
type DeckService struct {
	decks *repository.DeckRepository
	cards *repository.FlashcardRepository
	chats *repository.ChatRepository
	log   *zap.Logger
	now   func() int64
}

// NewDeckService creates a new DeckService.
func NewDeckService(decks *repository.DeckRepository, cards *repository.FlashcardRepository, chats *repository.ChatRepository, log *zap.Logger) *DeckService {
	return &DeckService{
		decks: decks,
		cards: cards,
		chats: chats,
		log:   log,
		now:   unixNow,
	}
}

// List returns the user's decks with their card counts.
func (s *DeckService) List(ctx context.Context, userID int64) ([]model.DeckSummary, error) {
	return s.decks.ListByUser(ctx, userID)
}

// Create adds a deck by hand. A chat_id must name an owned chat; if that
// chat already has a deck the existing one is returned.
func (s *DeckService) Create(ctx context.Context, userID int64, req model.CreateDeckRequest) (model.Deck, bool, error) {
	now := s.now()
	deck := model.Deck{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Color:       req.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if deck.Color == "" {
		deck.Color = model.DefaultDeckColor
	}

	if req.ChatID == nil {
		if err := s.decks.Create(ctx, &deck); err != nil {
			return model.Deck{}, false, err
		}
		return deck, true, nil
	}

	if _, err := s.chats.GetByID(ctx, userID, *req.ChatID); err != nil {
		return model.Deck{}, false, translate(err)
	}

	deck.ChatID = req.ChatID
	created, err := s.decks.GetOrCreateForChat(ctx, &deck)
	if err != nil {
		return model.Deck{}, false, translate(err)
	}
	return deck, created, nil
}

// Get returns a deck with its flashcards.
func (s *DeckService) Get(ctx context.Context, userID, deckID int64) (model.DeckDetailResponse, error) {
	deck, err := s.decks.GetByID(ctx, userID, deckID)
	if err != nil {
		return model.DeckDetailResponse{}, translate(err)
	}

	cards, err := s.cards.List(ctx, userID, repository.FlashcardFilter{DeckID: &deck.ID})
	if err != nil {
		return model.DeckDetailResponse{}, err
	}

	return model.DeckDetailResponse{Deck: *deck, Flashcards: cards}, nil
}

// Update patches a deck's title, description or color.
func (s *DeckService) Update(ctx context.Context, userID, deckID int64, req model.UpdateDeckRequest) (model.Deck, error) {
	deck, err := s.decks.GetByID(ctx, userID, deckID)
	if err != nil {
		return model.Deck{}, translate(err)
	}

	if req.Title != nil {
		deck.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		deck.Description = *req.Description
	}
	if req.Color != nil {
		deck.Color = *req.Color
	}
	deck.UpdatedAt = s.now()

	if err := s.decks.Update(ctx, deck); err != nil {
		return model.Deck{}, translate(err)
	}
	return *deck, nil
}

// Delete removes a deck together with its flashcards and their reviews.
func (s *DeckService) Delete(ctx context.Context, userID, deckID int64) error {
	if err := s.decks.Delete(ctx, userID, deckID); err != nil {
		return translate(err)
	}
	s.log.Debug("deck deleted", zap.Int64("user_id", userID), zap.Int64("deck_id", deckID))
	return nil
}

// ensureChatDeck returns the chat's deck, creating it on first use.
func ensureChatDeck(ctx context.Context, decks *repository.DeckRepository, chat *model.Chat, now int64) (model.Deck, error) {
	chatID := chat.ID
	deck := model.Deck{
		UserID:      chat.UserID,
		ChatID:      &chatID,
		Title:       chat.Title,
		Description: chatDeckDescription,
		Color:       model.DefaultDeckColor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := decks.GetOrCreateForChat(ctx, &deck); err != nil {
		return model.Deck{}, err
	}
	return deck, nil
}
