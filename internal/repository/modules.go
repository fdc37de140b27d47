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

// ErrBadReorder is returned when a reorder request does not name exactly
// the event's modules.
var ErrBadReorder = errors.New("reorder must list every module of the event exactly once")

// ModuleRepository handles persistence for dashboard modules.
type ModuleRepository struct {
	db *pgxpool.Pool
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{db: db}
}

const moduleColumns = `id, event_id, type, title, icon, enabled, "order", badge_type, badge_value, config, created_at, updated_at`

func scanModule(row pgx.Row) (*model.Module, error) {
	var m model.Module
	err := row.Scan(&m.ID, &m.EventID, &m.Type, &m.Title, &m.Icon, &m.Enabled,
		&m.Order, &m.BadgeType, &m.BadgeValue, &m.Config, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan module: %w", err)
	}
	return &m, nil
}

// Create inserts a module.
func (r *ModuleRepository) Create(ctx context.Context, m *model.Module) error {
	now := time.Now().UTC()
	m.ID = uuid.New()
	m.CreatedAt = now
	m.UpdatedAt = now
	if len(m.Config) == 0 {
		m.Config = []byte(`{}`)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO modules (id, event_id, type, title, icon, enabled, "order", badge_type, badge_value, config, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.EventID, m.Type, m.Title, m.Icon, m.Enabled, m.Order,
		m.BadgeType, m.BadgeValue, m.Config, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert module: %w", err)
	}
	return nil
}

// GetByID returns a module or ErrNotFound.
func (r *ModuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	return scanModule(r.db.QueryRow(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id))
}

// ListByEvent returns an event's modules in dashboard order. With
// enabledOnly, disabled tiles are skipped.
func (r *ModuleRepository) ListByEvent(ctx context.Context, eventID uuid.UUID, enabledOnly bool) ([]model.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE event_id = $1`
	if enabledOnly {
		query += ` AND enabled`
	}
	query += ` ORDER BY "order", created_at`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, *m)
	}
	return modules, rows.Err()
}

// Update applies the non-nil fields of req.
func (r *ModuleRepository) Update(ctx context.Context, id uuid.UUID, req model.UpdateModuleRequest) (*model.Module, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Type != nil {
		m.Type = *req.Type
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Icon != nil {
		m.Icon = *req.Icon
	}
	if req.Enabled != nil {
		m.Enabled = *req.Enabled
	}
	if req.Order != nil {
		m.Order = *req.Order
	}
	if req.BadgeType != nil {
		m.BadgeType = *req.BadgeType
	}
	if req.BadgeValue != nil {
		m.BadgeValue = *req.BadgeValue
	}
	if len(req.Config) > 0 {
		m.Config = req.Config
	}

	ct, err := r.db.Exec(ctx,
		`UPDATE modules
		 SET type = $2, title = $3, icon = $4, enabled = $5, "order" = $6,
		     badge_type = $7, badge_value = $8, config = $9, updated_at = now()
		 WHERE id = $1`,
		m.ID, m.Type, m.Title, m.Icon, m.Enabled, m.Order, m.BadgeType, m.BadgeValue, m.Config,
	)
	if err != nil {
		return nil, fmt.Errorf("update module: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a module.
func (r *ModuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder rewrites the dashboard order of an event's modules in one
// transaction. orderedIDs must name exactly the event's modules.
func (r *ModuleRepository) Reorder(ctx context.Context, eventID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id FROM modules WHERE event_id = $1 FOR UPDATE`, eventID)
	if err != nil {
		return fmt.Errorf("lock modules: %w", err)
	}
	var current []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan module id: %w", err)
		}
		current = append(current, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if !sameIDSet(current, orderedIDs) {
		return ErrBadReorder
	}
	for pos, id := range orderedIDs {
		if _, err := tx.Exec(ctx,
			`UPDATE modules SET "order" = $2, updated_at = now() WHERE id = $1`, id, pos); err != nil {
			return fmt.Errorf("reorder module %s: %w", id, err)
		}
	}
	return tx.Commit(ctx)
}

// sameIDSet reports whether a and b contain the same ids, each exactly
// once.
func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	for _, id := range b {
		if !seen[id] {
			return false
		}
		delete(seen, id)
	}
	return len(seen) == 0
}
