package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventnav/program-service/internal/model"
)

// SpeakerRepository handles persistence for speakers.
type SpeakerRepository struct {
	db *pgxpool.Pool
}

// NewSpeakerRepository constructs a SpeakerRepository.
func NewSpeakerRepository(db *pgxpool.Pool) *SpeakerRepository {
	return &SpeakerRepository{db: db}
}

const speakerColumns = `id, event_id, name, bio, photo_url, position, company, social_links, created_at, updated_at`

func scanSpeaker(row pgx.Row) (*model.Speaker, error) {
	var s model.Speaker
	err := row.Scan(&s.ID, &s.EventID, &s.Name, &s.Bio, &s.PhotoURL, &s.Position,
		&s.Company, &s.SocialLinks, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan speaker: %w", err)
	}
	return &s, nil
}

// Create inserts a speaker.
func (r *SpeakerRepository) Create(ctx context.Context, req model.CreateSpeakerRequest) (*model.Speaker, error) {
	now := time.Now().UTC()
	links := req.SocialLinks
	if len(links) == 0 {
		links = []byte(`{}`)
	}
	s := &model.Speaker{
		ID:          uuid.New(),
		EventID:     req.EventID,
		Name:        req.Name,
		Bio:         req.Bio,
		PhotoURL:    req.PhotoURL,
		Position:    req.Position,
		Company:     req.Company,
		SocialLinks: links,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO speakers (id, event_id, name, bio, photo_url, position, company, social_links, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.EventID, s.Name, s.Bio, s.PhotoURL, s.Position, s.Company, s.SocialLinks, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert speaker: %w", err)
	}
	return s, nil
}

// ListByEvent returns an event's speakers ordered by name.
func (r *SpeakerRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Speaker, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+speakerColumns+` FROM speakers WHERE event_id = $1 ORDER BY name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	defer rows.Close()

	var speakers []model.Speaker
	for rows.Next() {
		s, err := scanSpeaker(rows)
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, *s)
	}
	return speakers, rows.Err()
}

// GetByID returns a speaker or ErrNotFound.
func (r *SpeakerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Speaker, error) {
	return scanSpeaker(r.db.QueryRow(ctx,
		`SELECT `+speakerColumns+` FROM speakers WHERE id = $1`, id))
}

// Update replaces a speaker's fields from req.
func (r *SpeakerRepository) Update(ctx context.Context, id uuid.UUID, req model.CreateSpeakerRequest) (*model.Speaker, error) {
	links := req.SocialLinks
	if len(links) == 0 {
		links = []byte(`{}`)
	}
	ct, err := r.db.Exec(ctx,
		`UPDATE speakers
		 SET name = $2, bio = $3, photo_url = $4, position = $5, company = $6,
		     social_links = $7, updated_at = now()
		 WHERE id = $1`,
		id, req.Name, req.Bio, req.PhotoURL, req.Position, req.Company, links,
	)
	if err != nil {
		return nil, fmt.Errorf("update speaker: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a speaker.
func (r *SpeakerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM speakers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete speaker: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LocationRepository handles persistence for venue locations.
type LocationRepository struct {
	db *pgxpool.Pool
}

// NewLocationRepository constructs a LocationRepository.
func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{db: db}
}

const locationColumns = `id, event_id, zone_id, name, floor, description, map_data, created_at, updated_at`

func scanLocation(row pgx.Row) (*model.Location, error) {
	var l model.Location
	err := row.Scan(&l.ID, &l.EventID, &l.ZoneID, &l.Name, &l.Floor, &l.Description,
		&l.MapData, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan location: %w", err)
	}
	return &l, nil
}

// Create inserts a location.
func (r *LocationRepository) Create(ctx context.Context, req model.CreateLocationRequest) (*model.Location, error) {
	now := time.Now().UTC()
	mapData := req.MapData
	if len(mapData) == 0 {
		mapData = []byte(`{}`)
	}
	l := &model.Location{
		ID:          uuid.New(),
		EventID:     req.EventID,
		ZoneID:      req.ZoneID,
		Name:        req.Name,
		Floor:       req.Floor,
		Description: req.Description,
		MapData:     mapData,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO locations (id, event_id, zone_id, name, floor, description, map_data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.EventID, l.ZoneID, l.Name, l.Floor, l.Description, l.MapData, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return l, nil
}

// ListByEvent returns an event's locations ordered by floor, then name.
func (r *LocationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Location, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+locationColumns+` FROM locations
		 WHERE event_id = $1 ORDER BY floor NULLS LAST, name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, *l)
	}
	return locations, rows.Err()
}

// GetByID returns a location or ErrNotFound.
func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	return scanLocation(r.db.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
}

// Update replaces a location's fields from req.
func (r *LocationRepository) Update(ctx context.Context, id uuid.UUID, req model.CreateLocationRequest) (*model.Location, error) {
	mapData := req.MapData
	if len(mapData) == 0 {
		mapData = []byte(`{}`)
	}
	ct, err := r.db.Exec(ctx,
		`UPDATE locations
		 SET zone_id = $2, name = $3, floor = $4, description = $5, map_data = $6, updated_at = now()
		 WHERE id = $1`,
		id, req.ZoneID, req.Name, req.Floor, req.Description, mapData,
	)
	if err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a location. Sessions pointing at it fall back to NULL.
func (r *LocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NewsRepository handles persistence for event news.
type NewsRepository struct {
	db *pgxpool.Pool
}

// NewNewsRepository constructs a NewsRepository.
func NewNewsRepository(db *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{db: db}
}

const newsColumns = `id, event_id, title, content, image_url, published_at, created_at, updated_at`

func scanNews(row pgx.Row) (*model.News, error) {
	var n model.News
	err := row.Scan(&n.ID, &n.EventID, &n.Title, &n.Content, &n.ImageURL,
		&n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan news: %w", err)
	}
	return &n, nil
}

// Create inserts a news entry.
func (r *NewsRepository) Create(ctx context.Context, req model.CreateNewsRequest) (*model.News, error) {
	now := time.Now().UTC()
	n := &model.News{
		ID:          uuid.New(),
		EventID:     req.EventID,
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		PublishedAt: req.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO news (id, event_id, title, content, image_url, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.EventID, n.Title, n.Content, n.ImageURL, n.PublishedAt, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert news: %w", err)
	}
	return n, nil
}

// ListPublished returns the published news of an event, newest first.
func (r *NewsRepository) ListPublished(ctx context.Context, eventID uuid.UUID) ([]model.News, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+newsColumns+` FROM news
		 WHERE event_id = $1 AND published_at IS NOT NULL AND published_at <= now()
		 ORDER BY published_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []model.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

// Update replaces a news entry's fields from req.
func (r *NewsRepository) Update(ctx context.Context, id uuid.UUID, req model.CreateNewsRequest) (*model.News, error) {
	ct, err := r.db.Exec(ctx,
		`UPDATE news
		 SET title = $2, content = $3, image_url = $4, published_at = $5, updated_at = now()
		 WHERE id = $1`,
		id, req.Title, req.Content, req.ImageURL, req.PublishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update news: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
}

// Delete removes a news entry.
func (r *NewsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
