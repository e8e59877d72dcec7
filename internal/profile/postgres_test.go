package profile

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := NewPGStore(db)
	if err != nil {
		t.Fatalf("NewPGStore: %v", err)
	}
	return store, mock
}

func profileRows(uid, email, tenantID, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"uid", "email", "display_name", "photo_url", "phone_number",
		"tenant_id", "role", "created_at", "updated_at",
	}).AddRow(uid, email, "", "", "", tenantID, role, now, now)
}

func TestPGStoreCreateConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("insert into user_profiles").
		WithArgs("u1", "a@b.c", "", "", "").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.Create(context.Background(), &UserProfile{UID: "u1", Email: "a@b.c"})
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreCreateWritesBinding(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	mock.ExpectQuery("insert into user_profiles").
		WithArgs("u1", "a@b.c", "Jo", "T1", "resident").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &UserProfile{UID: "u1", Email: "a@b.c", DisplayName: "Jo", TenantID: "T1", Role: "resident"}
	if err := store.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFind(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select .* from user_profiles").
		WithArgs("u1").
		WillReturnRows(profileRows("u1", "a@b.c", "T1", "staff"))

	p, err := store.Find(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if p.UID != "u1" || p.TenantID != "T1" || string(p.Role) != "staff" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	mock.ExpectQuery("select .* from user_profiles").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	if _, err := store.Find(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreBindTenant(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("update user_profiles set").
		WithArgs("u1", "T1", "tenant_admin").
		WillReturnRows(profileRows("u1", "a@b.c", "T1", "tenant_admin"))

	p, err := store.BindTenant(context.Background(), "u1", "T1", "tenant_admin")
	if err != nil {
		t.Fatalf("BindTenant: %v", err)
	}
	if string(p.Role) != "tenant_admin" {
		t.Fatalf("unexpected role: %s", p.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreListByTenant(t *testing.T) {
	store, mock := newMockStore(t)
	rows := profileRows("u1", "a@b.c", "T1", "staff").
		AddRow("u2", "b@b.c", "", "", "", "T1", "resident", time.Now(), time.Now())
	mock.ExpectQuery("select .* from user_profiles").
		WithArgs("T1").
		WillReturnRows(rows)

	list, err := store.ListByTenant(context.Background(), "T1")
	if err != nil {
		t.Fatalf("ListByTenant: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(list))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
