package repository

import (
	"context"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
)

// ProfileRepository looks up the acting user's profile, the server-side
// identity every scope decision is derived from.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.ActorProfile, error)
}

// DistributorRepository resolves counterparty records.
type DistributorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Distributor, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.Distributor, error)
}

// ProductRepository answers tenant-scoped SKU existence checks. Lookups are
// batched: one call covers every SKU in a validation pass.
type ProductRepository interface {
	ExistingSKUs(ctx context.Context, organizationID uuid.UUID, skus []string) (map[string]bool, error)
}

// ImportLogRepository appends and queries the import log keyed by content
// fingerprint. The log's uniqueness constraint is the final authority for
// at-most-once commit.
type ImportLogRepository interface {
	// Append writes one log entry. It returns a DuplicateImport error when
	// the storage-layer uniqueness constraint rejects the fingerprint tuple.
	Append(ctx context.Context, entry domain.ImportLogEntry) (domain.ImportLogEntry, error)
	// FindAccepted returns the prior import that wrote rows for the
	// fingerprint, or nil when none exists.
	FindAccepted(ctx context.Context, fp domain.FileFingerprint) (*domain.PriorImport, error)
	List(ctx context.Context, organizationID uuid.UUID, userID uuid.UUID, limit int, offset int) ([]domain.ImportLogEntry, error)
}

// RecordRepository commits validated rows as domain records. CreateBatch is
// one atomic write: either every row in the batch lands or none do.
type RecordRepository interface {
	CreateBatch(ctx context.Context, kind domain.ImportKind, opts BatchOptions, records []domain.ImportRecord) error
	// DeleteByImport removes every row one import invocation wrote. The
	// committer uses it to undo its writes when the import-log constraint
	// rules a concurrent confirm the winner.
	DeleteByImport(ctx context.Context, kind domain.ImportKind, importID uuid.UUID) error
}

// BatchOptions carries the tenant and provenance metadata stamped on every
// row of a batch.
type BatchOptions struct {
	OrganizationID uuid.UUID
	DistributorID  uuid.UUID
	UserID         uuid.UUID
	ImportID       uuid.UUID
}
