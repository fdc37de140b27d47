package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/service"
)

// CatalogHandler serves the event catalog: events, program sessions,
// speakers, locations and news.
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Events

// CreateEvent handles POST /admin/events.
func (h *CatalogHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events.
func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}.
func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	event, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PUT /admin/events/{id}.
func (h *CatalogHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.UpdateEvent(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /admin/events/{id}.
func (h *CatalogHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sessions

// CreateSession handles POST /admin/sessions.
func (h *CatalogHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sess, err := h.svc.CreateSession(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// ListSessions handles GET /events/{id}/sessions with optional filters:
// day (YYYY-MM-DD), type, location_id, q, available=true.
func (h *CatalogHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	filter, err := parseSessionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sessions, err := h.svc.ListSessions(r.Context(), eventID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func parseSessionFilter(r *http.Request) (model.SessionFilter, error) {
	var filter model.SessionFilter
	q := r.URL.Query()
	if day := q.Get("day"); day != "" {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			return filter, err
		}
		filter.Day = &t
	}
	if raw := q.Get("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.LocationID = &id
	}
	filter.Type = q.Get("type")
	filter.Search = q.Get("q")
	filter.AvailableOnly = q.Get("available") == "true"
	return filter, nil
}

// GetSession handles GET /sessions/{id}.
func (h *CatalogHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	sess, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// UpdateSession handles PUT /admin/sessions/{id}.
func (h *CatalogHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.UpdateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sess, err := h.svc.UpdateSession(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// SetSessionCapacity handles PUT /admin/sessions/{id}/capacity.
func (h *CatalogHandler) SetSessionCapacity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req struct {
		Capacity *int `json:"capacity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sess, err := h.svc.SetSessionCapacity(r.Context(), id, req.Capacity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /admin/sessions/{id}.
func (h *CatalogHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionDays handles GET /events/{id}/sessions/days.
func (h *CatalogHandler) SessionDays(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	days, err := h.svc.SessionDays(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format("2006-01-02"))
	}
	writeJSON(w, http.StatusOK, out)
}

// SessionTypes handles GET /events/{id}/sessions/types.
func (h *CatalogHandler) SessionTypes(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	types, err := h.svc.SessionTypes(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, types)
}

// Speakers

// CreateSpeaker handles POST /admin/speakers.
func (h *CatalogHandler) CreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSpeakerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	speaker, err := h.svc.CreateSpeaker(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, speaker)
}

// ListSpeakers handles GET /events/{id}/speakers.
func (h *CatalogHandler) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	speakers, err := h.svc.ListSpeakers(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if speakers == nil {
		speakers = []model.Speaker{}
	}
	writeJSON(w, http.StatusOK, speakers)
}

// GetSpeaker handles GET /speakers/{id}.
func (h *CatalogHandler) GetSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	speaker, err := h.svc.GetSpeaker(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

// UpdateSpeaker handles PUT /admin/speakers/{id}.
func (h *CatalogHandler) UpdateSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.CreateSpeakerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	speaker, err := h.svc.UpdateSpeaker(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

// DeleteSpeaker handles DELETE /admin/speakers/{id}.
func (h *CatalogHandler) DeleteSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.DeleteSpeaker(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Locations

// CreateLocation handles POST /admin/locations.
func (h *CatalogHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	location, err := h.svc.CreateLocation(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, location)
}

// ListLocations handles GET /events/{id}/locations.
func (h *CatalogHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	locations, err := h.svc.ListLocations(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if locations == nil {
		locations = []model.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

// GetLocation handles GET /locations/{id}.
func (h *CatalogHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	location, err := h.svc.GetLocation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, location)
}

// UpdateLocation handles PUT /admin/locations/{id}.
func (h *CatalogHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.CreateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	location, err := h.svc.UpdateLocation(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, location)
}

// DeleteLocation handles DELETE /admin/locations/{id}.
func (h *CatalogHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.DeleteLocation(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Map

// EventMap handles GET /events/{id}/map.
func (h *CatalogHandler) EventMap(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	data, err := h.svc.EventMap(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// CreateZone handles POST /admin/zones.
func (h *CatalogHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req model.CreateZoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	zone, err := h.svc.CreateZone(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, zone)
}

// UpdateZone handles PUT /admin/zones/{id}.
func (h *CatalogHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.CreateZoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	zone, err := h.svc.UpdateZone(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zone)
}

// DeleteZone handles DELETE /admin/zones/{id}.
func (h *CatalogHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.DeleteZone(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Modules

// ListModules handles GET /events/{id}/modules. Only enabled tiles are
// returned on the public surface.
func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	modules, err := h.svc.ListModules(r.Context(), eventID, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if modules == nil {
		modules = []model.Module{}
	}
	writeJSON(w, http.StatusOK, modules)
}

// ListAllModules handles GET /admin/events/{id}/modules, disabled tiles
// included.
func (h *CatalogHandler) ListAllModules(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	modules, err := h.svc.ListModules(r.Context(), eventID, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if modules == nil {
		modules = []model.Module{}
	}
	writeJSON(w, http.StatusOK, modules)
}

// GetModule handles GET /modules/{id}.
func (h *CatalogHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	module, err := h.svc.GetModule(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

// CreateModule handles POST /admin/modules.
func (h *CatalogHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req model.CreateModuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	module, err := h.svc.CreateModule(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, module)
}

// UpdateModule handles PUT /admin/modules/{id}.
func (h *CatalogHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.UpdateModuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	module, err := h.svc.UpdateModule(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

// DeleteModule handles DELETE /admin/modules/{id}.
func (h *CatalogHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.DeleteModule(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderModules handles PUT /admin/events/{id}/modules/reorder.
func (h *CatalogHandler) ReorderModules(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.ReorderModulesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.svc.ReorderModules(r.Context(), eventID, req.ModuleIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ModuleTypes handles GET /admin/modules/types.
func (h *CatalogHandler) ModuleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ModuleTypes())
}

// News

// CreateNews handles POST /admin/news.
func (h *CatalogHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req model.CreateNewsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	news, err := h.svc.CreateNews(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, news)
}

// ListNews handles GET /events/{id}/news.
func (h *CatalogHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	news, err := h.svc.ListNews(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if news == nil {
		news = []model.News{}
	}
	writeJSON(w, http.StatusOK, news)
}

// UpdateNews handles PUT /admin/news/{id}.
func (h *CatalogHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req model.CreateNewsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	news, err := h.svc.UpdateNews(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, news)
}

// DeleteNews handles DELETE /admin/news/{id}.
func (h *CatalogHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.DeleteNews(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
