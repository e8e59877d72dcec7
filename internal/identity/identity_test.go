package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"soberhaven.org/internal/authz"
)

func setSecret(t *testing.T) {
	t.Helper()
	ResetSecretForTests()
	t.Setenv(secretEnvVariable, "test-secret")
	t.Cleanup(ResetSecretForTests)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	setSecret(t)
	svc := NewService()

	token, expiresAt, err := svc.IssueToken("user-42", authz.RoleStaffAdmin, "T1", 30*time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.SubjectID != "user-42" {
		t.Fatalf("unexpected subject: %s", claims.SubjectID)
	}
	if claims.Role != authz.RoleStaffAdmin {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.TenantID != "T1" {
		t.Fatalf("unexpected tenant: %s", claims.TenantID)
	}
}

func TestIssueTokenTenantBinding(t *testing.T) {
	setSecret(t)
	svc := NewService()

	if _, _, err := svc.IssueToken("u1", authz.RoleStaff, "", time.Minute); err == nil {
		t.Fatal("expected error: staff without home tenant")
	}
	if _, _, err := svc.IssueToken("u1", authz.RoleSuperAdmin, "T1", time.Minute); err == nil {
		t.Fatal("expected error: super_admin with tenant")
	}
	if _, _, err := svc.IssueToken("u1", authz.Role("janitor"), "T1", time.Minute); err == nil {
		t.Fatal("expected error: unknown role")
	}

	token, _, err := svc.IssueToken("root", authz.RoleSuperAdmin, "", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken super_admin: %v", err)
	}
	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.TenantID != "" {
		t.Fatalf("super_admin claims should carry no tenant, got %q", claims.TenantID)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	setSecret(t)
	past := time.Now().Add(-time.Hour)
	issuerSvc := NewService(WithClock(func() time.Time { return past }))

	token, _, err := issuerSvc.IssueToken("u1", authz.RoleStaff, "T1", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := NewService().Verify(context.Background(), token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	setSecret(t)
	svc := NewService()

	token, _, err := svc.IssueToken("u1", authz.RoleStaff, "T1", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = strings.Repeat("A", len(parts[1]))
	if _, err := svc.Verify(context.Background(), strings.Join(parts, ".")); err == nil {
		t.Fatal("expected tampered token to fail verification")
	}
	if _, err := svc.Verify(context.Background(), ""); err == nil {
		t.Fatal("expected empty credential to fail verification")
	}
}

func TestRevocationList(t *testing.T) {
	setSecret(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(WithRevocationList(NewRedisRevocationList(client)))

	token, _, err := svc.IssueToken("u1", authz.RoleTenantAdmin, "T1", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); err != nil {
		t.Fatalf("Verify before revoke: %v", err)
	}

	if err := svc.Revoke(context.Background(), token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); err == nil {
		t.Fatal("expected revoked token to fail verification")
	}
}

func TestVerifyDeniesWhenRevocationListUnreachable(t *testing.T) {
	setSecret(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(WithRevocationList(NewRedisRevocationList(client)))

	token, _, err := svc.IssueToken("u1", authz.RoleStaff, "T1", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	mr.Close()
	if _, err := svc.Verify(context.Background(), token); err == nil {
		t.Fatal("expected denial when revocation list is unreachable")
	}
}

func TestRevokeWithoutListConfigured(t *testing.T) {
	setSecret(t)
	svc := NewService()
	token, _, err := svc.IssueToken("u1", authz.RoleStaff, "T1", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := svc.Revoke(context.Background(), token); err != ErrRevocationUnavailable {
		t.Fatalf("expected ErrRevocationUnavailable, got %v", err)
	}
}
