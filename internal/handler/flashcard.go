package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/service"
)

// FlashcardHandler handles HTTP requests for flashcards and their reviews.
type FlashcardHandler struct {
	cards   *service.FlashcardService
	reviews *service.ReviewService
	log     *zap.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(cards *service.FlashcardService, reviews *service.ReviewService, log *zap.Logger) *FlashcardHandler {
	return &FlashcardHandler{cards: cards, reviews: reviews, log: log}
}

// HandleList handles GET /api/flashcards requests with an optional deck_id filter.
func (h *FlashcardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	deckID, ok := queryID(w, r, "deck_id")
	if !ok {
		return
	}

	cards, err := h.cards.List(r.Context(), userID, deckID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// HandleCreate handles POST /api/flashcards requests.
func (h *FlashcardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateFlashcardRequest
	if !decode(w, r, &req) {
		return
	}

	card, err := h.cards.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

// HandleGet handles GET /api/flashcards/{id} requests.
func (h *FlashcardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.cards.Get(r.Context(), userID, cardID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// HandleUpdate handles PATCH /api/flashcards/{id} requests.
func (h *FlashcardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateFlashcardRequest
	if !decode(w, r, &req) {
		return
	}

	card, err := h.cards.Update(r.Context(), userID, cardID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// HandleDelete handles DELETE /api/flashcards/{id} requests.
func (h *FlashcardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cards.Delete(r.Context(), userID, cardID); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListReviews handles GET /api/flashcard-reviews requests with an
// optional flashcard_id filter.
func (h *FlashcardHandler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cardID, ok := queryID(w, r, "flashcard_id")
	if !ok {
		return
	}

	reviews, err := h.reviews.List(r.Context(), userID, cardID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

// HandleCreateReview handles POST /api/flashcard-reviews requests.
func (h *FlashcardHandler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateReviewRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.reviews.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleReviewStats handles GET /api/flashcard-reviews/stats requests.
func (h *FlashcardHandler) HandleReviewStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.reviews.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
