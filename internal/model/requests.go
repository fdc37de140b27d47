package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateEventRequest is the payload for creating an event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateStart   time.Time `json:"date_start"`
	DateEnd     time.Time `json:"date_end"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
}

// UpdateEventRequest is the payload for updating an event. Nil fields are
// left untouched.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DateStart   *time.Time `json:"date_start"`
	DateEnd     *time.Time `json:"date_end"`
	Location    *string    `json:"location"`
	Status      *string    `json:"status"`
}

// CreateSessionRequest is the payload for creating a program entry.
type CreateSessionRequest struct {
	EventID          uuid.UUID   `json:"event_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	DateStart        *time.Time  `json:"date_start"`
	DateEnd          *time.Time  `json:"date_end"`
	LocationID       *uuid.UUID  `json:"location_id"`
	Type             string      `json:"type"`
	Capacity         *int        `json:"capacity"`
	ApprovalRequired bool        `json:"approval_required"`
	SpeakerIDs       []uuid.UUID `json:"speaker_ids"`
}

// UpdateSessionRequest is the payload for updating a program entry.
// Capacity and registered_count are deliberately absent from the generic
// update path: capacity changes go through their own endpoint and the
// counter is only ever touched by the admission primitives.
type UpdateSessionRequest struct {
	Title            *string     `json:"title"`
	Description      *string     `json:"description"`
	DateStart        *time.Time  `json:"date_start"`
	DateEnd          *time.Time  `json:"date_end"`
	LocationID       *uuid.UUID  `json:"location_id"`
	Type             *string     `json:"type"`
	ApprovalRequired *bool       `json:"approval_required"`
	Status           *string     `json:"status"`
	SpeakerIDs       []uuid.UUID `json:"speaker_ids"`
}

// SessionFilter narrows a program listing.
type SessionFilter struct {
	Day           *time.Time
	Type          string
	LocationID    *uuid.UUID
	Search        string
	AvailableOnly bool
}

// CreateSpeakerRequest is the payload for creating a speaker.
type CreateSpeakerRequest struct {
	EventID     uuid.UUID       `json:"event_id"`
	Name        string          `json:"name"`
	Bio         string          `json:"bio"`
	PhotoURL    string          `json:"photo_url"`
	Position    string          `json:"position"`
	Company     string          `json:"company"`
	SocialLinks json.RawMessage `json:"social_links"`
}

// CreateLocationRequest is the payload for creating a location.
type CreateLocationRequest struct {
	EventID     uuid.UUID       `json:"event_id"`
	ZoneID      *uuid.UUID      `json:"zone_id"`
	Name        string          `json:"name"`
	Floor       *int            `json:"floor"`
	Description string          `json:"description"`
	MapData     json.RawMessage `json:"map_data"`
}

// CreateZoneRequest is the payload for creating a map zone.
type CreateZoneRequest struct {
	EventID     uuid.UUID       `json:"event_id"`
	Name        string          `json:"name"`
	Floor       *int            `json:"floor"`
	Coordinates json.RawMessage `json:"coordinates"`
	MapData     json.RawMessage `json:"map_data"`
}

// CreateModuleRequest is the payload for creating a dashboard module.
type CreateModuleRequest struct {
	EventID    uuid.UUID       `json:"event_id"`
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	Icon       string          `json:"icon"`
	Enabled    *bool           `json:"enabled"`
	Order      int             `json:"order"`
	BadgeType  string          `json:"badge_type"`
	BadgeValue string          `json:"badge_value"`
	Config     json.RawMessage `json:"config"`
}

// UpdateModuleRequest is the payload for updating a dashboard module.
// Nil fields are left untouched.
type UpdateModuleRequest struct {
	Type       *string         `json:"type"`
	Title      *string         `json:"title"`
	Icon       *string         `json:"icon"`
	Enabled    *bool           `json:"enabled"`
	Order      *int            `json:"order"`
	BadgeType  *string         `json:"badge_type"`
	BadgeValue *string         `json:"badge_value"`
	Config     json.RawMessage `json:"config"`
}

// ReorderModulesRequest carries the full new ordering of an event's
// modules.
type ReorderModulesRequest struct {
	ModuleIDs []uuid.UUID `json:"module_ids"`
}

// CreateNewsRequest is the payload for publishing a news entry.
type CreateNewsRequest struct {
	EventID     uuid.UUID  `json:"event_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url"`
	PublishedAt *time.Time `json:"published_at"`
}

// RegisterResponse is returned by the registration endpoints.
type RegisterResponse struct {
	RegistrationID uuid.UUID          `json:"registration_id"`
	Status         RegistrationStatus `json:"status"`
	Message        string             `json:"message"`
}

// CancelResponse is returned by the cancellation endpoint.
type CancelResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// AssistantChatRequest is a question for the event assistant.
type AssistantChatRequest struct {
	EventID uuid.UUID `json:"event_id"`
	Message string    `json:"message"`
}

// AssistantChatResponse carries the assistant answer plus the chunk types
// that grounded it.
type AssistantChatResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}
