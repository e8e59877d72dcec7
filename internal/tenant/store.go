package tenant

import "context"

// Store describes persistence operations for operator accounts.
type Store interface {
	Create(ctx context.Context, t *Tenant) error
	Find(ctx context.Context, id string) (Tenant, error)
	FindBySlug(ctx context.Context, slug string) (Tenant, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]Tenant, error)
	UpdateSettings(ctx context.Context, id string, settings Settings) (Tenant, error)
	UpdateSubscription(ctx context.Context, id string, sub Subscription) (Tenant, error)
	SetStatus(ctx context.Context, id string, status Status) error
}
