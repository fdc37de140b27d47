// Package service holds the business layer between the HTTP handlers and
// the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/cache"
	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/repository"
)

// ErrValidation marks request payloads the caller can fix. Handlers map
// it to 400; everything else unclassified is a server error.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// CatalogService manages events and everything hanging off them. Reads go
// through the cache where one is configured; every write invalidates the
// affected keys.
type CatalogService struct {
	events    *repository.EventRepository
	sessions  *repository.SessionRepository
	speakers  *repository.SpeakerRepository
	locations *repository.LocationRepository
	zones     *repository.ZoneRepository
	modules   *repository.ModuleRepository
	news      *repository.NewsRepository
	cache     *cache.Cache
	log       *zap.Logger
}

func NewCatalogService(
	events *repository.EventRepository,
	sessions *repository.SessionRepository,
	speakers *repository.SpeakerRepository,
	locations *repository.LocationRepository,
	zones *repository.ZoneRepository,
	modules *repository.ModuleRepository,
	news *repository.NewsRepository,
	c *cache.Cache,
	log *zap.Logger,
) *CatalogService {
	return &CatalogService{
		events:    events,
		sessions:  sessions,
		speakers:  speakers,
		locations: locations,
		zones:     zones,
		modules:   modules,
		news:      news,
		cache:     c,
		log:       log,
	}
}

func eventKey(id uuid.UUID) string    { return "event:" + id.String() }
func sessionsKey(id uuid.UUID) string { return "sessions:" + id.String() }
func sessionKey(id uuid.UUID) string  { return "session:" + id.String() }

// Events

func (s *CatalogService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalid("title is required")
	}
	if req.DateEnd.Before(req.DateStart) {
		return nil, invalid("date_end is before date_start")
	}
	if req.Status == "" {
		req.Status = string(model.EventUpcoming)
	}
	if !validEventStatus(req.Status) {
		return nil, invalid("unknown event status %q", req.Status)
	}
	ev, err := s.events.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, "events")
	return ev, nil
}

func (s *CatalogService) ListEvents(ctx context.Context) ([]model.Event, error) {
	var cached []model.Event
	if s.cache.GetJSON(ctx, "events", &cached) {
		return cached, nil
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, "events", events)
	return events, nil
}

func (s *CatalogService) GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var cached model.Event
	if s.cache.GetJSON(ctx, eventKey(id), &cached) {
		return &cached, nil
	}
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, eventKey(id), ev)
	return ev, nil
}

func (s *CatalogService) UpdateEvent(ctx context.Context, id uuid.UUID, req model.UpdateEventRequest) (*model.Event, error) {
	if req.Status != nil && !validEventStatus(*req.Status) {
		return nil, invalid("unknown event status %q", *req.Status)
	}
	ev, err := s.events.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, "events", eventKey(id))
	return ev, nil
}

func (s *CatalogService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, "events", eventKey(id), sessionsKey(id))
	return nil
}

func validEventStatus(s string) bool {
	switch model.EventStatus(s) {
	case model.EventUpcoming, model.EventActive, model.EventFinished:
		return true
	}
	return false
}

// Sessions

func (s *CatalogService) CreateSession(ctx context.Context, req model.CreateSessionRequest) (*model.Session, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalid("title is required")
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		return nil, invalid("capacity must not be negative")
	}
	if req.DateStart != nil && req.DateEnd != nil && req.DateEnd.Before(*req.DateStart) {
		return nil, invalid("date_end is before date_start")
	}
	if _, err := s.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, sessionsKey(req.EventID))
	return sess, nil
}

func (s *CatalogService) GetSession(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var cached model.Session
	if s.cache.GetJSON(ctx, sessionKey(id), &cached) {
		return &cached, nil
	}
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, sessionKey(id), sess)
	return sess, nil
}

// ListSessions returns an event's program. Only the unfiltered listing is
// cached; filtered variants hit the database directly.
func (s *CatalogService) ListSessions(ctx context.Context, eventID uuid.UUID, filter model.SessionFilter) ([]model.Session, error) {
	cacheable := filter == (model.SessionFilter{})
	if cacheable {
		var cached []model.Session
		if s.cache.GetJSON(ctx, sessionsKey(eventID), &cached) {
			return cached, nil
		}
	}
	sessions, err := s.sessions.ListByEvent(ctx, eventID, filter)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.SetJSON(ctx, sessionsKey(eventID), sessions)
	}
	return sessions, nil
}

func (s *CatalogService) UpdateSession(ctx context.Context, id uuid.UUID, req model.UpdateSessionRequest) (*model.Session, error) {
	if req.Status != nil && !validSessionStatus(*req.Status) {
		return nil, invalid("unknown session status %q", *req.Status)
	}
	sess, err := s.sessions.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, sessionKey(id), sessionsKey(sess.EventID))
	return sess, nil
}

// SetSessionCapacity changes the seat limit. Shrinking below the current
// registered count is rejected by the storage layer.
func (s *CatalogService) SetSessionCapacity(ctx context.Context, id uuid.UUID, capacity *int) (*model.Session, error) {
	if capacity != nil && *capacity < 0 {
		return nil, invalid("capacity must not be negative")
	}
	if err := s.sessions.SetCapacity(ctx, id, capacity); err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, sessionKey(id), sessionsKey(sess.EventID))
	return sess, nil
}

func (s *CatalogService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, sessionKey(id), sessionsKey(sess.EventID))
	return nil
}

func (s *CatalogService) SessionDays(ctx context.Context, eventID uuid.UUID) ([]time.Time, error) {
	return s.sessions.Days(ctx, eventID)
}

func (s *CatalogService) SessionTypes(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	return s.sessions.Types(ctx, eventID)
}

func validSessionStatus(s string) bool {
	switch model.SessionStatus(s) {
	case model.SessionActive, model.SessionCancelled, model.SessionFinished:
		return true
	}
	return false
}

// Speakers

func (s *CatalogService) CreateSpeaker(ctx context.Context, req model.CreateSpeakerRequest) (*model.Speaker, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name is required")
	}
	if _, err := s.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}
	return s.speakers.Create(ctx, req)
}

func (s *CatalogService) ListSpeakers(ctx context.Context, eventID uuid.UUID) ([]model.Speaker, error) {
	return s.speakers.ListByEvent(ctx, eventID)
}

func (s *CatalogService) GetSpeaker(ctx context.Context, id uuid.UUID) (*model.Speaker, error) {
	return s.speakers.GetByID(ctx, id)
}

func (s *CatalogService) UpdateSpeaker(ctx context.Context, id uuid.UUID, req model.CreateSpeakerRequest) (*model.Speaker, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name is required")
	}
	return s.speakers.Update(ctx, id, req)
}

func (s *CatalogService) DeleteSpeaker(ctx context.Context, id uuid.UUID) error {
	return s.speakers.Delete(ctx, id)
}

// Locations

func (s *CatalogService) CreateLocation(ctx context.Context, req model.CreateLocationRequest) (*model.Location, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name is required")
	}
	if _, err := s.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}
	return s.locations.Create(ctx, req)
}

func (s *CatalogService) ListLocations(ctx context.Context, eventID uuid.UUID) ([]model.Location, error) {
	return s.locations.ListByEvent(ctx, eventID)
}

func (s *CatalogService) GetLocation(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	return s.locations.GetByID(ctx, id)
}

func (s *CatalogService) UpdateLocation(ctx context.Context, id uuid.UUID, req model.CreateLocationRequest) (*model.Location, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name is required")
	}
	return s.locations.Update(ctx, id, req)
}

func (s *CatalogService) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return s.locations.Delete(ctx, id)
}

// Zones and the event map

func (s *CatalogService) CreateZone(ctx context.Context, req model.CreateZoneRequest) (*model.Zone, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name is required")
	}
	if _, err := s.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}
	return s.zones.Create(ctx, req)
}

func (s *CatalogService) UpdateZone(ctx context.Context, id uuid.UUID, req model.CreateZoneRequest) (*model.Zone, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name is required")
	}
	return s.zones.Update(ctx, id, req)
}

func (s *CatalogService) DeleteZone(ctx context.Context, id uuid.UUID) error {
	return s.zones.Delete(ctx, id)
}

// EventMap returns the combined map payload: every zone and location of
// the event. Empty slices, not nulls, so map clients need no guards.
func (s *CatalogService) EventMap(ctx context.Context, eventID uuid.UUID) (*model.MapData, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	zones, err := s.zones.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	locations, err := s.locations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if zones == nil {
		zones = []model.Zone{}
	}
	if locations == nil {
		locations = []model.Location{}
	}
	return &model.MapData{Zones: zones, Locations: locations}, nil
}

// Modules

func (s *CatalogService) CreateModule(ctx context.Context, req model.CreateModuleRequest) (*model.Module, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalid("title is required")
	}
	if !validModuleType(req.Type) {
		return nil, invalid("unknown module type %q", req.Type)
	}
	if req.BadgeType == "" {
		req.BadgeType = "none"
	}
	if !validBadgeType(req.BadgeType) {
		return nil, invalid("unknown badge type %q", req.BadgeType)
	}
	if _, err := s.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	m := &model.Module{
		EventID:    req.EventID,
		Type:       req.Type,
		Title:      req.Title,
		Icon:       req.Icon,
		Enabled:    enabled,
		Order:      req.Order,
		BadgeType:  req.BadgeType,
		BadgeValue: req.BadgeValue,
		Config:     req.Config,
	}
	if err := s.modules.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListModules returns an event's dashboard. Public callers see enabled
// tiles only; admins see everything.
func (s *CatalogService) ListModules(ctx context.Context, eventID uuid.UUID, enabledOnly bool) ([]model.Module, error) {
	return s.modules.ListByEvent(ctx, eventID, enabledOnly)
}

func (s *CatalogService) GetModule(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	return s.modules.GetByID(ctx, id)
}

func (s *CatalogService) UpdateModule(ctx context.Context, id uuid.UUID, req model.UpdateModuleRequest) (*model.Module, error) {
	if req.Type != nil && !validModuleType(*req.Type) {
		return nil, invalid("unknown module type %q", *req.Type)
	}
	if req.BadgeType != nil && !validBadgeType(*req.BadgeType) {
		return nil, invalid("unknown badge type %q", *req.BadgeType)
	}
	return s.modules.Update(ctx, id, req)
}

func (s *CatalogService) DeleteModule(ctx context.Context, id uuid.UUID) error {
	return s.modules.Delete(ctx, id)
}

// ReorderModules rewrites the dashboard order from the full id list.
func (s *CatalogService) ReorderModules(ctx context.Context, eventID uuid.UUID, moduleIDs []uuid.UUID) error {
	if len(moduleIDs) == 0 {
		return invalid("module_ids is required")
	}
	return s.modules.Reorder(ctx, eventID, moduleIDs)
}

// ModuleTypes lists the tile kinds the dashboard can render.
func (s *CatalogService) ModuleTypes() []string {
	return model.ModuleTypes
}

func validModuleType(t string) bool {
	for _, known := range model.ModuleTypes {
		if t == known {
			return true
		}
	}
	return false
}

func validBadgeType(t string) bool {
	switch t {
	case "none", "count", "dot":
		return true
	}
	return false
}

// News

func (s *CatalogService) CreateNews(ctx context.Context, req model.CreateNewsRequest) (*model.News, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalid("title is required")
	}
	if _, err := s.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}
	return s.news.Create(ctx, req)
}

func (s *CatalogService) ListNews(ctx context.Context, eventID uuid.UUID) ([]model.News, error) {
	return s.news.ListPublished(ctx, eventID)
}

func (s *CatalogService) UpdateNews(ctx context.Context, id uuid.UUID, req model.CreateNewsRequest) (*model.News, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalid("title is required")
	}
	return s.news.Update(ctx, id, req)
}

func (s *CatalogService) DeleteNews(ctx context.Context, id uuid.UUID) error {
	return s.news.Delete(ctx, id)
}
