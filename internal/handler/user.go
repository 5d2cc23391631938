package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/service"
)

// UserHandler handles the vendor API key of the current user.
type UserHandler struct {
	service *service.UserService
	log     *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{service: svc, log: log}
}

// HandleGetAPIKey handles GET /api/user/apikey requests.
func (h *UserHandler) HandleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := h.service.APIKeyStatus(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSetAPIKey handles POST /api/user/apikey requests.
func (h *UserHandler) HandleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.APIKeyRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.SetAPIKey(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDeleteAPIKey handles DELETE /api/user/apikey requests.
func (h *UserHandler) HandleDeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAPIKey(r.Context(), userID); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
