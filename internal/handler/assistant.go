package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/service"
)

// AssistantHandler serves the event assistant chat and the admin
// knowledge-refresh endpoint.
type AssistantHandler struct {
	svc *service.AssistantService
}

func NewAssistantHandler(svc *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

// Chat handles POST /assistant/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.AssistantChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	user := userFrom(r.Context())
	resp, err := h.svc.Chat(r.Context(), user.ID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RefreshChunks handles POST /admin/events/{id}/knowledge/refresh.
func (h *AssistantHandler) RefreshChunks(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	count, err := h.svc.RefreshEventChunks(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"chunks": count})
}
