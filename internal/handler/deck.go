package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/service"
)

// DeckHandler handles HTTP requests for decks.
type DeckHandler struct {
	service *service.DeckService
	log     *zap.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(svc *service.DeckService, log *zap.Logger) *DeckHandler {
	return &DeckHandler{service: svc, log: log}
}

// HandleList handles GET /api/decks requests.
func (h *DeckHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	decks, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, decks)
}

// HandleCreate handles POST /api/decks requests. Naming a chat that already
// has a deck returns that deck with 200.
func (h *DeckHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateDeckRequest
	if !decode(w, r, &req) {
		return
	}

	deck, created, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, deck)
}

// HandleGet handles GET /api/decks/{id} requests.
func (h *DeckHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), userID, deckID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PATCH /api/decks/{id} requests.
func (h *DeckHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateDeckRequest
	if !decode(w, r, &req) {
		return
	}

	deck, err := h.service.Update(r.Context(), userID, deckID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// HandleDelete handles DELETE /api/decks/{id} requests.
func (h *DeckHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, deckID); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
