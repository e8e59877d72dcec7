package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"soberhaven.org/internal/authz"
	"soberhaven.org/internal/ids"
	"soberhaven.org/internal/profile"
)

// ProfileBinder records the owner's tenant and role on their stored profile
// when a tenant is created around them. Satisfied by *profile.Service.
type ProfileBinder interface {
	BindTenant(ctx context.Context, uid, tenantID string, role authz.Role) (profile.UserProfile, error)
}

// Service validates input and delegates persistence to a Store.
type Service struct {
	store    Store
	profiles ProfileBinder
}

func NewService(store Store, profiles ProfileBinder) (*Service, error) {
	if store == nil {
		return nil, errors.New("tenant: store is required")
	}
	return &Service{store: store, profiles: profiles}, nil
}

// Create provisions a new operator account on a trial plan. Slugs are
// unique across the platform.
func (s *Service) Create(ctx context.Context, name, slug, ownerUID string) (Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tenant{}, fmt.Errorf("%w: tenant name is required", ErrInvalidInput)
	}
	slug = strings.TrimSpace(strings.ToLower(slug))
	if !isValidSlug(slug) {
		return Tenant{}, fmt.Errorf("%w: slug must be lowercase letters, digits and hyphens", ErrInvalidInput)
	}
	ownerUID = strings.TrimSpace(ownerUID)
	if ownerUID == "" {
		return Tenant{}, fmt.Errorf("%w: owner_uid is required", ErrInvalidInput)
	}

	t := &Tenant{
		ID:           ids.New(),
		Name:         name,
		Slug:         slug,
		OwnerUID:     ownerUID,
		Status:       StatusTrial,
		Settings:     defaultSettings(),
		Subscription: defaultSubscription(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return Tenant{}, err
	}
	return *t, nil
}

// CreateWithAdmin provisions a tenant and binds the owner's profile to it as
// tenant_admin, mirroring the claims the identity provider will issue.
func (s *Service) CreateWithAdmin(ctx context.Context, name, slug, ownerUID string) (Tenant, error) {
	t, err := s.Create(ctx, name, slug, ownerUID)
	if err != nil {
		return Tenant{}, err
	}
	if s.profiles != nil {
		if _, err := s.profiles.BindTenant(ctx, ownerUID, t.ID, authz.RoleTenantAdmin); err != nil {
			return Tenant{}, fmt.Errorf("tenant: bind owner profile: %w", err)
		}
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (Tenant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Tenant{}, fmt.Errorf("%w: tenant_id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Tenant, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return Tenant{}, fmt.Errorf("%w: slug is required", ErrInvalidInput)
	}
	return s.store.FindBySlug(ctx, slug)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUID string) ([]Tenant, error) {
	ownerUID = strings.TrimSpace(ownerUID)
	if ownerUID == "" {
		return nil, fmt.Errorf("%w: owner_uid is required", ErrInvalidInput)
	}
	return s.store.ListByOwner(ctx, ownerUID)
}

// UpdateSettings merges a partial settings change onto the stored settings.
func (s *Service) UpdateSettings(ctx context.Context, id string, upd SettingsUpdate) (Tenant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Tenant{}, fmt.Errorf("%w: tenant_id is required", ErrInvalidInput)
	}
	current, err := s.store.Find(ctx, id)
	if err != nil {
		return Tenant{}, err
	}
	settings := current.Settings
	if upd.AllowMultipleHouses != nil {
		settings.AllowMultipleHouses = *upd.AllowMultipleHouses
	}
	if upd.RequireIncidentReview != nil {
		settings.RequireIncidentReview = *upd.RequireIncidentReview
	}
	if upd.MaxResidents != nil {
		if *upd.MaxResidents < 0 {
			return Tenant{}, fmt.Errorf("%w: max_residents must not be negative", ErrInvalidInput)
		}
		settings.MaxResidents = *upd.MaxResidents
	}
	if upd.Timezone != nil {
		tz := strings.TrimSpace(*upd.Timezone)
		if tz == "" {
			return Tenant{}, fmt.Errorf("%w: timezone is required", ErrInvalidInput)
		}
		settings.Timezone = tz
	}
	return s.store.UpdateSettings(ctx, id, settings)
}

func (s *Service) UpdateSubscription(ctx context.Context, id string, sub Subscription) (Tenant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Tenant{}, fmt.Errorf("%w: tenant_id is required", ErrInvalidInput)
	}
	sub.Plan = strings.TrimSpace(strings.ToLower(sub.Plan))
	sub.Status = strings.TrimSpace(strings.ToLower(sub.Status))
	if sub.Plan == "" || sub.Status == "" {
		return Tenant{}, fmt.Errorf("%w: plan and status are required", ErrInvalidInput)
	}
	return s.store.UpdateSubscription(ctx, id, sub)
}

func (s *Service) Suspend(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusSuspended)
}

func (s *Service) Activate(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, id string, status Status) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidInput)
	}
	return s.store.SetStatus(ctx, id, status)
}

func isValidSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
