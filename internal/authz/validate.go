package authz

import (
	"context"
	"errors"
)

// Validator decides whether a caller may act within a target tenant.
// It holds no state beyond the verifier seam, so a single instance is safe
// across any number of concurrent requests.
type Validator struct {
	verifier Verifier
}

// NewValidator wires the validator to its identity collaborator.
func NewValidator(verifier Verifier) (*Validator, error) {
	if verifier == nil {
		return nil, errors.New("authz: verifier is required")
	}
	return &Validator{verifier: verifier}, nil
}

// ValidateTenantAccess verifies the credential and checks tenant scope,
// returning the verified claims on success.
//
// Every verification failure — malformed, expired, revoked, bad signature —
// is collapsed into one coarse denial so that token internals never leak
// past this boundary. super_admin is the single designated bypass of tenant
// scoping; everyone else must match their home tenant exactly.
func (v *Validator) ValidateTenantAccess(ctx context.Context, credential, tenantID string) (Claims, error) {
	claims, err := v.verifier.Verify(ctx, credential)
	if err != nil {
		return Claims{}, NewTenantError("Invalid tenant access")
	}
	if claims.Role == RoleSuperAdmin {
		return claims, nil
	}
	if claims.TenantID != tenantID {
		return Claims{}, NewTenantError("Unauthorized access to tenant")
	}
	return claims, nil
}
