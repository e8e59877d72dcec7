package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"soberhaven.org/internal/authz"
)

const pgErrUniqueViolation = "23505"

// PGStore persists profiles in Postgres via database/sql.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) (*PGStore, error) {
	if db == nil {
		return nil, errors.New("profile: database connection is required")
	}
	return &PGStore{db: db}, nil
}

const profileColumns = `
	uid, email,
	coalesce(display_name, ''), coalesce(photo_url, ''), coalesce(phone_number, ''),
	coalesce(tenant_id, ''), coalesce(role, ''),
	created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, p *UserProfile) error {
	row := s.db.QueryRowContext(ctx, `
		insert into user_profiles (uid, email, display_name, tenant_id, role)
		values ($1, $2, nullif($3, ''), nullif($4, ''), nullif($5, ''))
		returning created_at, updated_at
	`, p.UID, p.Email, p.DisplayName, p.TenantID, string(p.Role))
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, uid string) (UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+profileColumns+`
		from user_profiles
		where uid = $1
	`, uid)
	return scanProfile(row)
}

func (s *PGStore) ListByTenant(ctx context.Context, tenantID string) ([]UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+profileColumns+`
		from user_profiles
		where tenant_id = $1
		order by email
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, uid string, upd Update) (UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		update user_profiles set
			display_name = coalesce($2, display_name),
			photo_url    = coalesce($3, photo_url),
			phone_number = coalesce($4, phone_number),
			updated_at   = now()
		where uid = $1
		returning `+profileColumns+`
	`, uid, upd.DisplayName, upd.PhotoURL, upd.PhoneNumber)
	return scanProfile(row)
}

func (s *PGStore) BindTenant(ctx context.Context, uid, tenantID string, role string) (UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		update user_profiles set
			tenant_id  = nullif($2, ''),
			role       = $3,
			updated_at = now()
		where uid = $1
		returning `+profileColumns+`
	`, uid, tenantID, role)
	return scanProfile(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (UserProfile, error) {
	var (
		p    UserProfile
		role string
	)
	err := row.Scan(
		&p.UID, &p.Email,
		&p.DisplayName, &p.PhotoURL, &p.PhoneNumber,
		&p.TenantID, &role,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserProfile{}, ErrNotFound
		}
		return UserProfile{}, err
	}
	p.Role = authz.Role(role)
	return p, nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
