package profile

import "context"

// Store describes persistence operations for user profiles. Profiles are
// created on first onboarding and never deleted here; record lifecycle
// beyond that is an external data concern.
type Store interface {
	Create(ctx context.Context, p *UserProfile) error
	Find(ctx context.Context, uid string) (UserProfile, error)
	ListByTenant(ctx context.Context, tenantID string) ([]UserProfile, error)
	Update(ctx context.Context, uid string, upd Update) (UserProfile, error)
	BindTenant(ctx context.Context, uid, tenantID string, role string) (UserProfile, error)
}
