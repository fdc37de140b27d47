// Package model defines the core domain types for the event-program platform.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of a whole event.
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventActive   EventStatus = "active"
	EventFinished EventStatus = "finished"
)

// Event is the top-level entity: a conference, forum, or similar program.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	DateStart   time.Time   `json:"date_start"`
	DateEnd     time.Time   `json:"date_end"`
	Location    string      `json:"location,omitempty"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SessionStatus is the lifecycle state of a single program entry.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCancelled SessionStatus = "cancelled"
	SessionFinished  SessionStatus = "finished"
)

// Session is one bookable program entry of an event (a talk, workshop,
// excursion, ...). Capacity is nil for unlimited seating.
type Session struct {
	ID               uuid.UUID     `json:"id"`
	EventID          uuid.UUID     `json:"event_id"`
	Title            string        `json:"title"`
	Description      string        `json:"description,omitempty"`
	DateStart        *time.Time    `json:"date_start,omitempty"`
	DateEnd          *time.Time    `json:"date_end,omitempty"`
	LocationID       *uuid.UUID    `json:"location_id,omitempty"`
	Type             string        `json:"type,omitempty"`
	Capacity         *int          `json:"capacity,omitempty"`
	RegisteredCount  int           `json:"registered_count"`
	ApprovalRequired bool          `json:"approval_required"`
	Status           SessionStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	// Populated by list/detail queries, not stored on the row.
	LocationName string          `json:"location_name,omitempty"`
	Speakers     []SessionSpeaker `json:"speakers,omitempty"`
}

// AvailableSpots returns the number of free seats, or nil when unlimited.
func (s *Session) AvailableSpots() *int {
	if s.Capacity == nil {
		return nil
	}
	n := *s.Capacity - s.RegisteredCount
	if n < 0 {
		n = 0
	}
	return &n
}

// IsFull reports whether no seats remain. Unlimited sessions are never full.
func (s *Session) IsFull() bool {
	return s.Capacity != nil && s.RegisteredCount >= *s.Capacity
}

// SessionSpeaker is the slim speaker view embedded in session responses.
type SessionSpeaker struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position string    `json:"position,omitempty"`
	Company  string    `json:"company,omitempty"`
	PhotoURL string    `json:"photo_url,omitempty"`
}

// Speaker is a person presenting at an event.
type Speaker struct {
	ID          uuid.UUID       `json:"id"`
	EventID     uuid.UUID       `json:"event_id"`
	Name        string          `json:"name"`
	Bio         string          `json:"bio,omitempty"`
	PhotoURL    string          `json:"photo_url,omitempty"`
	Position    string          `json:"position,omitempty"`
	Company     string          `json:"company,omitempty"`
	SocialLinks json.RawMessage `json:"social_links,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Location is a named place inside the venue.
type Location struct {
	ID          uuid.UUID       `json:"id"`
	EventID     uuid.UUID       `json:"event_id"`
	ZoneID      *uuid.UUID      `json:"zone_id,omitempty"`
	Name        string          `json:"name"`
	Floor       *int            `json:"floor,omitempty"`
	Description string          `json:"description,omitempty"`
	MapData     json.RawMessage `json:"map_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Zone is a drawable region of the venue map. Locations may belong to a
// zone.
type Zone struct {
	ID          uuid.UUID       `json:"id"`
	EventID     uuid.UUID       `json:"event_id"`
	Name        string          `json:"name"`
	Floor       *int            `json:"floor,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	MapData     json.RawMessage `json:"map_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MapData is the combined map payload for one event.
type MapData struct {
	Zones     []Zone     `json:"zones"`
	Locations []Location `json:"locations"`
}

// Module is one dashboard tile of an event's WebApp home screen.
type Module struct {
	ID         uuid.UUID       `json:"id"`
	EventID    uuid.UUID       `json:"event_id"`
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	Icon       string          `json:"icon,omitempty"`
	Enabled    bool            `json:"enabled"`
	Order      int             `json:"order"`
	BadgeType  string          `json:"badge_type"`
	BadgeValue string          `json:"badge_value,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ModuleTypes are the dashboard tile kinds the WebApp knows how to render.
var ModuleTypes = []string{
	"program", "event_list", "map", "registration", "external_link",
	"custom_page", "assistant", "news", "messages",
}

// News is an announcement published for an event.
type News struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"event_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// User is an attendee identified through Telegram.
type User struct {
	ID         uuid.UUID `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RegistrationStatus is the admission state of one (session, user) pair.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Active reports whether the registration occupies a seat.
func (s RegistrationStatus) Active() bool {
	return s == RegistrationPending || s == RegistrationConfirmed
}

// Registration is one attendee's seat in a session. There is at most one
// row per (session, user) pair for all time: cancellation flips the status
// and a later registration reactivates the same row.
type Registration struct {
	ID           uuid.UUID          `json:"id"`
	SessionID    uuid.UUID          `json:"session_id"`
	UserID       uuid.UUID          `json:"user_id"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`
	ApprovedAt   *time.Time         `json:"approved_at,omitempty"`

	// Populated by listing queries.
	SessionTitle string `json:"session_title,omitempty"`
}

// KnowledgeChunk is one retrievable unit of assistant context. EventID is
// nil for global chunks shared across events.
type KnowledgeChunk struct {
	ID        uuid.UUID       `json:"id"`
	EventID   *uuid.UUID      `json:"event_id,omitempty"`
	ChunkType string          `json:"chunk_type"`
	Content   string          `json:"content"`
	ExtraData json.RawMessage `json:"extra_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
