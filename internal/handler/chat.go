package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/service"
)

// ChatHandler handles HTTP requests for chats, messages and flashcard generation.
type ChatHandler struct {
	chats    *service.ChatService
	generate *service.GenerateService
	log      *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chats *service.ChatService, generate *service.GenerateService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, generate: generate, log: log}
}

// HandleList handles GET /api/chats requests.
func (h *ChatHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	chats, err := h.chats.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

// HandleCreate handles POST /api/chats requests. An empty body is allowed.
func (h *ChatHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateChatRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	chat, err := h.chats.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

// HandleGet handles GET /api/chats/{id} requests.
func (h *ChatHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.chats.Get(r.Context(), userID, chatID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PATCH /api/chats/{id} requests.
func (h *ChatHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateChatRequest
	if !decode(w, r, &req) {
		return
	}

	chat, err := h.chats.Rename(r.Context(), userID, chatID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// HandleDelete handles DELETE /api/chats/{id} requests.
func (h *ChatHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.chats.Delete(r.Context(), userID, chatID); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListMessages handles GET /api/chats/{id}/messages requests.
func (h *ChatHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	msgs, err := h.chats.Messages(r.Context(), userID, chatID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

// HandleSendMessage handles POST /api/chats/{id}/messages requests.
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.chats.SendMessage(r.Context(), userID, chatID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGenerateForChat handles POST /api/chats/{id}/generate-flashcards requests.
func (h *ChatHandler) HandleGenerateForChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.generate.GenerateForChat(r.Context(), userID, chatID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGenerateForMessage handles
// POST /api/chats/{id}/messages/{messageId}/generate-flashcards requests.
func (h *ChatHandler) HandleGenerateForMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	messageID, ok := pathID(w, r, "messageId")
	if !ok {
		return
	}

	resp, err := h.generate.GenerateForMessage(r.Context(), userID, chatID, messageID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
