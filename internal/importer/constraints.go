package importer

import "github.com/growship/backend/internal/domain"

// Limits are the coarse file-level bounds checked before any expensive
// per-row work.
type Limits struct {
	MaxFileBytes    int64
	MaxRows         int
	BatchSize       int
	MaxErrorsPerRow int
}

// DefaultLimits returns the production defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:    10 << 20,
		MaxRows:         10000,
		BatchSize:       1000,
		MaxErrorsPerRow: 5,
	}
}

// CheckConstraints validates file statistics against the limits. Checks run
// in order and the first violation is returned alone: either violation makes
// the file unimportable, so aggregating adds nothing.
func (l Limits) CheckConstraints(stats domain.FileStats) error {
	if l.MaxFileBytes > 0 && stats.ByteSize > l.MaxFileBytes {
		return domain.NewError(domain.ErrConstraintViolation,
			"file size %d exceeds limit of %d bytes", stats.ByteSize, l.MaxFileBytes)
	}
	if l.MaxRows > 0 && stats.RowCount > l.MaxRows {
		return domain.NewError(domain.ErrConstraintViolation,
			"row count %d exceeds limit of %d", stats.RowCount, l.MaxRows)
	}
	return nil
}
