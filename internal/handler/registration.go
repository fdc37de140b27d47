package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/service"
)

// RegistrationHandler serves the attendee-facing registration endpoints
// and the admin approval surface.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Register handles POST /sessions/{id}/register.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	user := userFrom(r.Context())
	resp, err := h.svc.Register(r.Context(), sessionID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Cancel handles POST /sessions/{id}/cancel.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	user := userFrom(r.Context())
	resp, err := h.svc.Cancel(r.Context(), sessionID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /sessions/{id}/registration. It reports the calling
// user's registration state for the session.
func (h *RegistrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	user := userFrom(r.Context())
	reg, err := h.svc.Status(r.Context(), sessionID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if reg == nil {
		writeJSON(w, http.StatusOK, map[string]any{"registered": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"registered":   reg.Status.Active(),
		"registration": reg,
	})
}

// MyRegistrations handles GET /me/registrations?event_id=...
func (h *RegistrationHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var eventID *uuid.UUID
	if raw := r.URL.Query().Get("event_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid event_id")
			return
		}
		eventID = &id
	}

	regs, err := h.svc.MyRegistrations(r.Context(), user.ID, eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// SessionRegistrations handles GET /admin/sessions/{id}/registrations.
func (h *RegistrationHandler) SessionRegistrations(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	regs, err := h.svc.SessionRegistrations(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Approve handles POST /admin/registrations/{id}/approve.
func (h *RegistrationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	regID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	reg, err := h.svc.Approve(r.Context(), regID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Reconcile handles POST /admin/sessions/{id}/reconcile. It recomputes
// the session's seat counter from the registration ledger.
func (h *RegistrationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	count, err := h.svc.Reconcile(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"registered_count": count})
}
