package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"soberhaven.org/internal/authz"
)

// Service validates input and delegates persistence to a Store.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("profile: store is required")
	}
	return &Service{store: store}, nil
}

// Create onboards a subject on first sign-in.
func (s *Service) Create(ctx context.Context, uid, email, displayName string) (UserProfile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return UserProfile{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	p := &UserProfile{
		UID:         uid,
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return UserProfile{}, err
	}
	return *p, nil
}

// CreateMember onboards a subject directly into a tenant with a role, as a
// single store write. A failure leaves no half-created record behind.
func (s *Service) CreateMember(ctx context.Context, uid, email, displayName, tenantID string, role authz.Role) (UserProfile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return UserProfile{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if _, err := authz.ParseRole(string(role)); err != nil {
		return UserProfile{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	tenantID = strings.TrimSpace(tenantID)
	if role != authz.RoleSuperAdmin && tenantID == "" {
		return UserProfile{}, fmt.Errorf("%w: role %s requires a home tenant", ErrInvalidInput, role)
	}
	p := &UserProfile{
		UID:         uid,
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		TenantID:    tenantID,
		Role:        role,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return UserProfile{}, err
	}
	return *p, nil
}

func (s *Service) Get(ctx context.Context, uid string) (UserProfile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, uid)
}

func (s *Service) ListByTenant(ctx context.Context, tenantID string) ([]UserProfile, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant_id is required", ErrInvalidInput)
	}
	return s.store.ListByTenant(ctx, tenantID)
}

// UpdateContact edits the caller-editable display fields.
func (s *Service) UpdateContact(ctx context.Context, uid string, upd Update) (UserProfile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	if upd.DisplayName != nil {
		trimmed := strings.TrimSpace(*upd.DisplayName)
		upd.DisplayName = &trimmed
	}
	if upd.PhotoURL != nil {
		trimmed := strings.TrimSpace(*upd.PhotoURL)
		upd.PhotoURL = &trimmed
	}
	if upd.PhoneNumber != nil {
		trimmed := strings.TrimSpace(*upd.PhoneNumber)
		upd.PhoneNumber = &trimmed
	}
	return s.store.Update(ctx, uid, upd)
}

// BindTenant records the subject's home tenant and role on the profile
// projection. The identity provider remains the authority; this keeps the
// stored record in step with the claims it mirrors.
func (s *Service) BindTenant(ctx context.Context, uid, tenantID string, role authz.Role) (UserProfile, error) {
	uid = strings.TrimSpace(uid)
	tenantID = strings.TrimSpace(tenantID)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	if _, err := authz.ParseRole(string(role)); err != nil {
		return UserProfile{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if role != authz.RoleSuperAdmin && tenantID == "" {
		return UserProfile{}, fmt.Errorf("%w: role %s requires a home tenant", ErrInvalidInput, role)
	}
	return s.store.BindTenant(ctx, uid, tenantID, string(role))
}
