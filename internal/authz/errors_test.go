package authz

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKindsCarryConsistentStatus(t *testing.T) {
	cases := []struct {
		err    *Error
		kind   Kind
		code   string
		status int
	}{
		{NewAuthenticationError("please sign in"), KindAuthentication, CodeAuthError, http.StatusUnauthorized},
		{NewTenantError("Unauthorized access to tenant"), KindTenant, CodeTenantError, http.StatusForbidden},
		{NewValidationError("bad payload"), KindValidation, CodeValidationError, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if tc.err.Kind != tc.kind {
			t.Fatalf("%s: kind %v, want %v", tc.err.Code, tc.err.Kind, tc.kind)
		}
		if tc.err.Code != tc.code {
			t.Fatalf("unexpected code %s", tc.err.Code)
		}
		if tc.err.Status != tc.status {
			t.Fatalf("%s: status %d, want %d", tc.err.Code, tc.err.Status, tc.status)
		}
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("guard tenant: %w", NewTenantError("Unauthorized access to tenant"))
	if KindOf(err) != KindTenant {
		t.Fatalf("expected tenant kind, got %v", KindOf(err))
	}
	if StatusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", StatusOf(err))
	}
	if CodeOf(err) != CodeTenantError {
		t.Fatalf("unexpected code %s", CodeOf(err))
	}
}

func TestForeignErrorsFallBackToGeneric(t *testing.T) {
	err := errors.New("socket closed")
	if KindOf(err) != KindGeneric {
		t.Fatalf("expected generic kind, got %v", KindOf(err))
	}
	if StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", StatusOf(err))
	}
	if CodeOf(err) != CodeInternalError {
		t.Fatalf("unexpected code %s", CodeOf(err))
	}
}
