package authz

import "context"

// Claims are the verified identity attributes presented with one request.
// They are the authority for every authorization decision; stored profile
// records are display projections and may lag behind a role rotation.
// Claims live for a single request and are never cached or persisted here.
type Claims struct {
	SubjectID string
	Role      Role
	TenantID  string // empty only for super_admin
}

// Verifier is the external identity-verification collaborator. Timeouts and
// retries belong to its implementation; this package only consumes the
// resulting claims shape and treats any failure as a denial.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Claims, error)
}
