package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies an actor for scope resolution.
type Role string

const (
	// RoleAdmin is the platform operator; it may target any tenant.
	RoleAdmin Role = "admin"
	// RoleBrand is an organization-level user; it may only target its own
	// organization but any distributor under it.
	RoleBrand Role = "brand"
	// RoleDistributor is bound to one distributor; its scope is fixed by its
	// assignment and client input may never widen it.
	RoleDistributor Role = "distributor"
)

// ActorProfile is the server-side identity record for the acting user,
// looked up by actor id. Contact fields feed the auto-population chain.
type ActorProfile struct {
	UserID           uuid.UUID `json:"user_id"`
	Role             Role      `json:"role"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	DistributorID    uuid.UUID `json:"distributor_id,omitempty"`
	ContactName      string    `json:"contact_name,omitempty"`
	ContactEmail     string    `json:"contact_email,omitempty"`
}

// TenantScope is the resolved (organization, distributor) pair every
// downstream read and write is bounded by. It is computed once per request
// and threaded explicitly; it is never persisted or rebuilt mid-pipeline.
type TenantScope struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	DistributorID  uuid.UUID `json:"distributor_id,omitempty"`
	Elevated       bool      `json:"elevated"`
}

// Distributor is the counterparty record referenced by imported rows and
// used as an auto-population source.
type Distributor struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	ContactName    string    `json:"contact_name,omitempty"`
	ContactEmail   string    `json:"contact_email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
