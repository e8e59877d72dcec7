package profile

import (
	"errors"
	"time"

	"soberhaven.org/internal/authz"
)

var (
	ErrNotFound     = errors.New("profile: not found")
	ErrConflict     = errors.New("profile: already exists")
	ErrInvalidInput = errors.New("profile: invalid input")
)

// UserProfile is the stored record for one subject. It mirrors the tenant
// and role from the subject's verified claims for display purposes only;
// authorization decisions must read the claims, never this record, which may
// be stale relative to a just-rotated role.
type UserProfile struct {
	UID         string     `json:"uid"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	TenantID    string     `json:"tenant_id,omitempty"`
	Role        authz.Role `json:"role,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Update carries the caller-editable contact fields. Nil means unchanged.
type Update struct {
	DisplayName *string
	PhotoURL    *string
	PhoneNumber *string
}
