// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/eventnav/program-service/internal/admission"
	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/repository"
	"github.com/eventnav/program-service/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathUUID parses the named chi URL parameter as a UUID. On failure it
// writes a 400 and returns false.
func pathUUID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps the business error taxonomy onto HTTP status
// codes. Transient conflicts become 409 so clients may re-issue the
// request; everything unclassified is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, admission.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, admission.ErrSessionFull):
		writeError(w, http.StatusConflict, "session is fully booked")
	case errors.Is(err, admission.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "already registered for this session")
	case errors.Is(err, admission.ErrSessionClosed):
		writeError(w, http.StatusConflict, "session is not open for registration")
	case errors.Is(err, admission.ErrNotRegistered):
		writeError(w, http.StatusNotFound, "not registered for this session")
	case errors.Is(err, admission.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "registration already cancelled")
	case errors.Is(err, admission.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "registration is not pending approval")
	case errors.Is(err, admission.ErrConflict):
		writeError(w, http.StatusConflict, "temporary conflict, please retry")
	case errors.Is(err, repository.ErrCapacityBelowCount):
		writeError(w, http.StatusConflict, "capacity is below the current registration count")
	case errors.Is(err, repository.ErrBadReorder):
		writeError(w, http.StatusBadRequest, "reorder must list every module of the event exactly once")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
