package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileFingerprint is the idempotency key of an upload: the content hash of
// the raw bytes plus the tenant/actor/kind tuple it was uploaded under.
// At most one import with written rows may exist per fingerprint.
type FileFingerprint struct {
	Hash           string     `json:"hash"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Kind           ImportKind `json:"kind"`
}

// ImportStatus is the terminal state of one import-log entry.
type ImportStatus string

const (
	ImportStatusSuccess ImportStatus = "success"
	ImportStatusPartial ImportStatus = "partial"
	ImportStatusFailed  ImportStatus = "failed"
)

// ImportLogEntry is the persisted accounting record for one confirm
// invocation. It is written exactly once per invocation, even on total
// failure, so duplicate detection stays accurate. The entry, not any client
// state, is the source of truth for idempotency.
type ImportLogEntry struct {
	ID             uuid.UUID    `json:"id"`
	OrganizationID uuid.UUID    `json:"organization_id"`
	DistributorID  uuid.UUID    `json:"distributor_id,omitempty"`
	UserID         uuid.UUID    `json:"user_id"`
	Kind           ImportKind   `json:"kind"`
	FileHash       string       `json:"file_hash"`
	FileName       string       `json:"file_name"`
	TotalRows      int          `json:"total_rows"`
	SuccessfulRows int          `json:"successful_rows"`
	FailedRows     int          `json:"failed_rows"`
	Status         ImportStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

// StatusFor derives the terminal status from the row accounting.
func StatusFor(successful, failed int) ImportStatus {
	switch {
	case successful > 0 && failed == 0:
		return ImportStatusSuccess
	case successful > 0:
		return ImportStatusPartial
	default:
		return ImportStatusFailed
	}
}

// PriorImport is the reference returned to an actor whose upload matched a
// previously accepted fingerprint.
type PriorImport struct {
	ID          uuid.UUID `json:"id"`
	ImportedAt  time.Time `json:"importedAt"`
	RecordCount int       `json:"recordCount"`
	FileName    string    `json:"fileName,omitempty"`
}
