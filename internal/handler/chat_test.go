package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardchat/cardchat-go/internal/model"
)

func TestAPIKeyRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.register("alice")

	var status model.APIKeyStatusResponse
	s.doJSON(http.MethodGet, "/api/user/apikey", token, nil, http.StatusOK, &status)
	assert.False(t, status.HasAPIKey)

	code, raw := s.do(http.MethodPost, "/api/user/apikey", token, map[string]string{"api_key": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "vendorkey", decodeError(t, raw).Errors["api_key"])

	s.doJSON(http.MethodPost, "/api/user/apikey", token,
		map[string]any{"api_key": testVendorKey, "verify": true}, http.StatusOK, &status)
	assert.True(t, status.HasAPIKey)
	assert.Equal(t, "sk-ant-...abcd", status.MaskedKey)

	s.vendor.set(func(f *fakeAnthropic) { f.status = http.StatusUnauthorized })
	code, raw = s.do(http.MethodPost, "/api/user/apikey", token,
		map[string]any{"api_key": "sk-ant-another-key-0000", "verify": true})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "api key rejected by provider", decodeError(t, raw).Message)

	s.doJSON(http.MethodGet, "/api/user/apikey", token, nil, http.StatusOK, &status)
	assert.Equal(t, "sk-ant-...abcd", status.MaskedKey, "rejected key does not replace the stored one")

	code, _ = s.do(http.MethodDelete, "/api/user/apikey", token, nil)
	assert.Equal(t, http.StatusNoContent, code)
	s.doJSON(http.MethodGet, "/api/user/apikey", token, nil, http.StatusOK, &status)
	assert.False(t, status.HasAPIKey)
}

// TestChatToFlashcardsScenario walks the main user journey end to end.
func TestChatToFlashcardsScenario(t *testing.T) {
	s := newTestServer(t)
	token := s.registerWithKey("alice")

	var chat model.Chat
	s.doJSON(http.MethodPost, "/api/chats", token, nil, http.StatusCreated, &chat)
	assert.Equal(t, model.PlaceholderChatTitle, chat.Title)

	var turn model.SendMessageResponse
	s.doJSON(http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", chat.ID), token,
		map[string]string{"content": "What is a cell?"}, http.StatusCreated, &turn)
	assert.Equal(t, "What is a cell?", turn.UserMessage.Content)
	assert.Equal(t, fakeChatReply, turn.AssistantMessage.Content)
	assert.Equal(t, fakeTitleReply, turn.Chat.Title)

	var detail model.ChatDetailResponse
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/chats/%d", chat.ID), token, nil, http.StatusOK, &detail)
	require.Len(t, detail.Messages, 2)

	var decks []model.DeckSummary
	s.doJSON(http.MethodGet, "/api/decks", token, nil, http.StatusOK, &decks)
	require.Len(t, decks, 1, "first exchange creates the chat's deck")
	assert.Equal(t, fakeTitleReply, decks[0].Title)
	assert.Zero(t, decks[0].CardCount)

	var gen model.GenerateFlashcardsResponse
	s.doJSON(http.MethodPost, fmt.Sprintf("/api/chats/%d/generate-flashcards", chat.ID), token,
		nil, http.StatusCreated, &gen)
	assert.Equal(t, decks[0].ID, gen.Deck.ID)
	require.Len(t, gen.Flashcards, 2)
	assert.Equal(t, "What is a cell?", gen.Flashcards[0].Question)

	s.doJSON(http.MethodPost,
		fmt.Sprintf("/api/chats/%d/messages/%d/generate-flashcards", chat.ID, detail.Messages[1].ID),
		token, nil, http.StatusCreated, &gen)
	assert.Len(t, gen.Flashcards, 2)

	var cards []model.Flashcard
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/flashcards?deck_id=%d", gen.Deck.ID), token, nil, http.StatusOK, &cards)
	require.Len(t, cards, 4)

	var review model.CreateReviewResponse
	s.doJSON(http.MethodPost, "/api/flashcard-reviews", token,
		map[string]any{"flashcard_id": cards[0].ID, "score": 0}, http.StatusCreated, &review)
	assert.Equal(t, 0, review.Review.Score)
	assert.Equal(t, 1, review.Flashcard.ReviewCount)

	var stats model.ReviewStats
	s.doJSON(http.MethodGet, "/api/flashcard-reviews/stats", token, nil, http.StatusOK, &stats)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.Equal(t, 4, stats.TotalCards)
	assert.Equal(t, 3, stats.CardsNeverReviewed)
	assert.Equal(t, 1, stats.ScoreDistribution[0])

	code, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/chats/%d", chat.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, code)

	var deck model.DeckDetailResponse
	s.doJSON(http.MethodGet, fmt.Sprintf("/api/decks/%d", gen.Deck.ID), token, nil, http.StatusOK, &deck)
	assert.Nil(t, deck.ChatID, "deck outlives its chat")
	assert.Len(t, deck.Flashcards, 4)
}

func TestChatLLMErrors(t *testing.T) {
	s := newTestServer(t)
	noKey := s.register("nokey")
	token := s.registerWithKey("alice")

	var chat model.Chat
	s.doJSON(http.MethodPost, "/api/chats", noKey, map[string]string{"title": "Mine"}, http.StatusCreated, &chat)
	code, raw := s.do(http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", chat.ID), noKey,
		map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "api key not configured", decodeError(t, raw).Message)

	s.doJSON(http.MethodPost, "/api/chats", token, nil, http.StatusCreated, &chat)
	path := fmt.Sprintf("/api/chats/%d/messages", chat.ID)

	s.vendor.set(func(f *fakeAnthropic) { f.delay = time.Second })
	code, raw = s.do(http.MethodPost, path, token, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "llm request timed out", decodeError(t, raw).Message)

	s.vendor.set(func(f *fakeAnthropic) { f.delay = 0; f.status = http.StatusInternalServerError })
	code, raw = s.do(http.MethodPost, path, token, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", decodeError(t, raw).Message)

	s.vendor.set(func(f *fakeAnthropic) { f.status = http.StatusUnauthorized })
	code, raw = s.do(http.MethodPost, path, token, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "api key rejected by provider", decodeError(t, raw).Message)

	var msgs []model.Message
	s.doJSON(http.MethodGet, path, token, nil, http.StatusOK, &msgs)
	assert.Len(t, msgs, 3, "user messages are kept when the LLM call fails")
}

func TestGenerateErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.registerWithKey("alice")

	var chat model.Chat
	s.doJSON(http.MethodPost, "/api/chats", token, nil, http.StatusCreated, &chat)
	path := fmt.Sprintf("/api/chats/%d/generate-flashcards", chat.ID)

	code, raw := s.do(http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "chat has no messages", decodeError(t, raw).Message)

	s.doJSON(http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", chat.ID), token,
		map[string]string{"content": "hi"}, http.StatusCreated, nil)

	s.vendor.set(func(f *fakeAnthropic) { f.cards = "Sorry, I cannot." })
	code, raw = s.do(http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", decodeError(t, raw).Message)

	s.vendor.set(func(f *fakeAnthropic) { f.cards = "[]" })
	var gen model.GenerateFlashcardsResponse
	s.doJSON(http.MethodPost, path, token, nil, http.StatusCreated, &gen)
	assert.Empty(t, gen.Flashcards)
	assert.NotZero(t, gen.Deck.ID)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/chats/%d/messages/999/generate-flashcards", chat.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/api/chats/abc/generate-flashcards", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestChatOwnership(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.registerWithKey("bob")

	var chat model.Chat
	s.doJSON(http.MethodPost, "/api/chats", alice, map[string]string{"title": "Private"}, http.StatusCreated, &chat)

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, fmt.Sprintf("/api/chats/%d", chat.ID), nil},
		{http.MethodPatch, fmt.Sprintf("/api/chats/%d", chat.ID), map[string]string{"title": "x"}},
		{http.MethodDelete, fmt.Sprintf("/api/chats/%d", chat.ID), nil},
		{http.MethodGet, fmt.Sprintf("/api/chats/%d/messages", chat.ID), nil},
		{http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", chat.ID), map[string]string{"content": "hi"}},
		{http.MethodPost, fmt.Sprintf("/api/chats/%d/generate-flashcards", chat.ID), nil},
	} {
		code, raw := s.do(tc.method, tc.path, bob, tc.body)
		assert.Equal(t, http.StatusNotFound, code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "chat not found", decodeError(t, raw).Message)
	}

	var list []model.Chat
	s.doJSON(http.MethodGet, "/api/chats", bob, nil, http.StatusOK, &list)
	assert.Empty(t, list)

	var renamed model.Chat
	s.doJSON(http.MethodPatch, fmt.Sprintf("/api/chats/%d", chat.ID), alice,
		map[string]string{"title": "Renamed"}, http.StatusOK, &renamed)
	assert.Equal(t, "Renamed", renamed.Title)
}
