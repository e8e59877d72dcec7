package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
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

func tenantRows(t *testing.T, id, slug string) *sqlmock.Rows {
	t.Helper()
	settings, err := json.Marshal(defaultSettings())
	if err != nil {
		t.Fatalf("marshal settings: %v", err)
	}
	sub, err := json.Marshal(defaultSubscription())
	if err != nil {
		t.Fatalf("marshal subscription: %v", err)
	}
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "owner_uid", "status", "settings", "subscription", "created_at", "updated_at",
	}).AddRow(id, "Harbor House", slug, "owner-1", "trial", settings, sub, now, now)
}

func TestPGStoreCreateSlugConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("insert into tenants").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.Create(context.Background(), &Tenant{
		ID: "T1", Name: "Harbor House", Slug: "harbor-house", OwnerUID: "owner-1",
		Status: StatusTrial, Settings: defaultSettings(), Subscription: defaultSubscription(),
	})
	if err != ErrSlugTaken {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindDecodesJSON(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select .* from tenants where id").
		WithArgs("T1").
		WillReturnRows(tenantRows(t, "T1", "harbor-house"))

	got, err := store.Find(context.Background(), "T1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Slug != "harbor-house" || got.Status != StatusTrial {
		t.Fatalf("unexpected tenant: %+v", got)
	}
	if got.Settings.MaxResidents != 100 || got.Subscription.Plan != "free" {
		t.Fatalf("JSON columns were not decoded: %+v", got)
	}

	mock.ExpectQuery("select .* from tenants where id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	if _, err := store.Find(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreSetStatus(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("update tenants set status").
		WithArgs("T1", "suspended").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SetStatus(context.Background(), "T1", StatusSuspended); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	mock.ExpectExec("update tenants set status").
		WithArgs("missing", "active").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.SetStatus(context.Background(), "missing", StatusActive); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
