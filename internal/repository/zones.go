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

// ZoneRepository handles persistence for venue map zones.
type ZoneRepository struct {
	db *pgxpool.Pool
}

// NewZoneRepository constructs a ZoneRepository.
func NewZoneRepository(db *pgxpool.Pool) *ZoneRepository {
	return &ZoneRepository{db: db}
}

const zoneColumns = `id, event_id, name, floor, coordinates, map_data, created_at, updated_at`

func scanZone(row pgx.Row) (*model.Zone, error) {
	var z model.Zone
	err := row.Scan(&z.ID, &z.EventID, &z.Name, &z.Floor, &z.Coordinates,
		&z.MapData, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan zone: %w", err)
	}
	return &z, nil
}

// Create inserts a zone.
func (r *ZoneRepository) Create(ctx context.Context, req model.CreateZoneRequest) (*model.Zone, error) {
	now := time.Now().UTC()
	coords := req.Coordinates
	if len(coords) == 0 {
		coords = []byte(`{}`)
	}
	mapData := req.MapData
	if len(mapData) == 0 {
		mapData = []byte(`{}`)
	}
	z := &model.Zone{
		ID:          uuid.New(),
		EventID:     req.EventID,
		Name:        req.Name,
		Floor:       req.Floor,
		Coordinates: coords,
		MapData:     mapData,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO zones (id, event_id, name, floor, coordinates, map_data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		z.ID, z.EventID, z.Name, z.Floor, z.Coordinates, z.MapData, z.CreatedAt, z.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert zone: %w", err)
	}
	return z, nil
}

// ListByEvent returns an event's zones ordered by floor, then name.
func (r *ZoneRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Zone, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+zoneColumns+` FROM zones
		 WHERE event_id = $1 ORDER BY floor NULLS LAST, name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

// GetByID returns a zone or ErrNotFound.
func (r *ZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Zone, error) {
	return scanZone(r.db.QueryRow(ctx,
		`SELECT `+zoneColumns+` FROM zones WHERE id = $1`, id))
}

// Update replaces a zone's fields from req.
func (r *ZoneRepository) Update(ctx context.Context, id uuid.UUID, req model.CreateZoneRequest) (*model.Zone, error) {
	coords := req.Coordinates
	if len(coords) == 0 {
		coords = []byte(`{}`)
	}
	mapData := req.MapData
	if len(mapData) == 0 {
		mapData = []byte(`{}`)
	}
	ct, err := r.db.Exec(ctx,
		`UPDATE zones
		 SET name = $2, floor = $3, coordinates = $4, map_data = $5, updated_at = now()
		 WHERE id = $1`,
		id, req.Name, req.Floor, coords, mapData,
	)
	if err != nil {
		return nil, fmt.Errorf("update zone: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a zone. Locations in it fall back to NULL.
func (r *ZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
