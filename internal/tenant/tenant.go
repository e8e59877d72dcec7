package tenant

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("tenant: not found")
	ErrSlugTaken    = errors.New("tenant: slug already exists")
	ErrInvalidInput = errors.New("tenant: invalid input")
)

// Status is the lifecycle state of an operator account.
type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
)

// Settings are per-operator knobs applied across every house they run.
type Settings struct {
	AllowMultipleHouses   bool   `json:"allow_multiple_houses"`
	RequireIncidentReview bool   `json:"require_incident_review"`
	MaxResidents          int    `json:"max_residents,omitempty"`
	Timezone              string `json:"timezone"`
}

// Subscription is the operator's billing plan snapshot.
type Subscription struct {
	Plan   string `json:"plan"`
	Status string `json:"status"`
}

// Tenant is an isolated operator account, the unit of data partitioning.
type Tenant struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	OwnerUID     string       `json:"owner_uid"`
	Status       Status       `json:"status"`
	Settings     Settings     `json:"settings"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// SettingsUpdate is a partial settings change. Nil means unchanged.
type SettingsUpdate struct {
	AllowMultipleHouses   *bool
	RequireIncidentReview *bool
	MaxResidents          *int
	Timezone              *string
}

// New tenants start on a trial with conservative defaults.
func defaultSettings() Settings {
	return Settings{
		AllowMultipleHouses:   true,
		RequireIncidentReview: true,
		MaxResidents:          100,
		Timezone:              "America/New_York",
	}
}

func defaultSubscription() Subscription {
	return Subscription{Plan: "free", Status: "active"}
}
