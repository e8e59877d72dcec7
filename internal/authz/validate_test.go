package authz

import (
	"context"
	"errors"
	"testing"
)

type stubVerifier struct {
	claims Claims
	err    error
	calls  int
}

func (s *stubVerifier) Verify(ctx context.Context, credential string) (Claims, error) {
	s.calls++
	if s.err != nil {
		return Claims{}, s.err
	}
	return s.claims, nil
}

func TestValidateTenantAccessHomeTenant(t *testing.T) {
	verifier := &stubVerifier{claims: Claims{SubjectID: "u1", Role: RoleStaff, TenantID: "T1"}}
	v, err := NewValidator(verifier)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	claims, err := v.ValidateTenantAccess(context.Background(), "token", "T1")
	if err != nil {
		t.Fatalf("expected access to home tenant, got %v", err)
	}
	if claims.SubjectID != "u1" || claims.Role != RoleStaff {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTenantAccessScopeMismatch(t *testing.T) {
	verifier := &stubVerifier{claims: Claims{SubjectID: "u1", Role: RoleStaff, TenantID: "T1"}}
	v, _ := NewValidator(verifier)

	_, err := v.ValidateTenantAccess(context.Background(), "token", "T2")
	if err == nil {
		t.Fatal("expected denial for foreign tenant")
	}
	if KindOf(err) != KindTenant {
		t.Fatalf("expected tenant kind, got %v", KindOf(err))
	}
	if err.Error() != "Unauthorized access to tenant" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidateTenantAccessSuperAdminBypass(t *testing.T) {
	verifier := &stubVerifier{claims: Claims{SubjectID: "root", Role: RoleSuperAdmin}}
	v, _ := NewValidator(verifier)

	for _, target := range []string{"T1", "T9", ""} {
		if _, err := v.ValidateTenantAccess(context.Background(), "token", target); err != nil {
			t.Fatalf("super_admin denied for %q: %v", target, err)
		}
	}
}

func TestValidateTenantAccessCollapsesVerificationFailures(t *testing.T) {
	// Expired, malformed and revoked credentials all surface as the same
	// coarse tenant denial; the verifier's reason must not leak through.
	for _, cause := range []error{
		errors.New("token expired"),
		errors.New("malformed segment"),
		errors.New("token revoked"),
	} {
		verifier := &stubVerifier{err: cause}
		v, _ := NewValidator(verifier)

		_, err := v.ValidateTenantAccess(context.Background(), "token", "T1")
		if err == nil {
			t.Fatalf("expected denial for cause %v", cause)
		}
		if KindOf(err) != KindTenant {
			t.Fatalf("expected tenant kind for cause %v, got %v", cause, KindOf(err))
		}
		if err.Error() != "Invalid tenant access" {
			t.Fatalf("unexpected message %q", err.Error())
		}
		if errors.Is(err, cause) {
			t.Fatal("verification cause leaked through the boundary")
		}
	}
}

func TestValidateTenantAccessIdempotent(t *testing.T) {
	verifier := &stubVerifier{claims: Claims{SubjectID: "u1", Role: RoleResident, TenantID: "T1"}}
	v, _ := NewValidator(verifier)

	first, err1 := v.ValidateTenantAccess(context.Background(), "token", "T1")
	second, err2 := v.ValidateTenantAccess(context.Background(), "token", "T1")
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Fatalf("decisions differ: %+v vs %+v", first, second)
	}
	if verifier.calls != 2 {
		t.Fatalf("expected 2 verification calls, got %d", verifier.calls)
	}
}

func TestNewValidatorRequiresVerifier(t *testing.T) {
	if _, err := NewValidator(nil); err == nil {
		t.Fatal("expected error for nil verifier")
	}
}

func TestContextClaimsRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := ClaimsFromContext(ctx); ok {
		t.Fatal("unexpected claims in empty context")
	}
	claims := Claims{SubjectID: "u1", Role: RoleTenantAdmin, TenantID: "T1"}
	ctx = ContextWithClaims(ctx, claims)
	got, ok := ClaimsFromContext(ctx)
	if !ok || got != claims {
		t.Fatalf("claims round trip failed: %+v, ok=%v", got, ok)
	}
}
