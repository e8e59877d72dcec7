package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrUniqueViolation = "23505"

// PGStore persists tenants in Postgres via database/sql. Settings and
// subscription travel as JSON columns.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) (*PGStore, error) {
	if db == nil {
		return nil, errors.New("tenant: database connection is required")
	}
	return &PGStore{db: db}, nil
}

const tenantColumns = `id, name, slug, owner_uid, status, settings, subscription, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, t *Tenant) error {
	settingsJSON, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("tenant: marshal settings: %w", err)
	}
	subJSON, err := json.Marshal(t.Subscription)
	if err != nil {
		return fmt.Errorf("tenant: marshal subscription: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		insert into tenants (id, name, slug, owner_uid, status, settings, subscription)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at, updated_at
	`, t.ID, t.Name, t.Slug, t.OwnerUID, string(t.Status), settingsJSON, subJSON)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (Tenant, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+tenantColumns+` from tenants where id = $1
	`, id)
	return scanTenant(row)
}

func (s *PGStore) FindBySlug(ctx context.Context, slug string) (Tenant, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+tenantColumns+` from tenants where slug = $1
	`, slug)
	return scanTenant(row)
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerUID string) ([]Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+tenantColumns+` from tenants where owner_uid = $1 order by created_at
	`, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *PGStore) UpdateSettings(ctx context.Context, id string, settings Settings) (Tenant, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return Tenant{}, fmt.Errorf("tenant: marshal settings: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		update tenants set settings = $2, updated_at = now()
		where id = $1
		returning `+tenantColumns+`
	`, id, settingsJSON)
	return scanTenant(row)
}

func (s *PGStore) UpdateSubscription(ctx context.Context, id string, sub Subscription) (Tenant, error) {
	subJSON, err := json.Marshal(sub)
	if err != nil {
		return Tenant{}, fmt.Errorf("tenant: marshal subscription: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		update tenants set subscription = $2, updated_at = now()
		where id = $1
		returning `+tenantColumns+`
	`, id, subJSON)
	return scanTenant(row)
}

func (s *PGStore) SetStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(ctx, `
		update tenants set status = $2, updated_at = now() where id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (Tenant, error) {
	var (
		t            Tenant
		status       string
		settingsJSON []byte
		subJSON      []byte
	)
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.OwnerUID, &status, &settingsJSON, &subJSON, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, err
	}
	t.Status = Status(status)
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &t.Settings); err != nil {
			return Tenant{}, fmt.Errorf("tenant: decode settings: %w", err)
		}
	}
	if len(subJSON) > 0 {
		if err := json.Unmarshal(subJSON, &t.Subscription); err != nil {
			return Tenant{}, fmt.Errorf("tenant: decode subscription: %w", err)
		}
	}
	return t, nil
}
