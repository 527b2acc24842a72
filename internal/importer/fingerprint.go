package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/growship/backend/internal/domain"
	"github.com/growship/backend/internal/repository"
)

// Fingerprint computes the idempotency key of an upload: a sha256 of the raw
// bytes. Deterministic, so the same file always maps to the same key.
func Fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Guard checks uploads against the import log. The check is advisory at
// upload and validate time; the committer repeats it immediately before
// writing, and the log's storage constraint settles any race that remains.
type Guard struct {
	logRepo repository.ImportLogRepository
}

// NewGuard creates an idempotency guard over the import log.
func NewGuard(logRepo repository.ImportLogRepository) *Guard {
	return &Guard{logRepo: logRepo}
}

// Check returns the prior accepted import for the fingerprint, or nil. The
// fingerprint tuple includes tenant and actor, so identical content uploaded
// by a different tenant is never blocked.
func (g *Guard) Check(ctx context.Context, fp domain.FileFingerprint) (*domain.PriorImport, error) {
	prior, err := g.logRepo.FindAccepted(ctx, fp)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	return prior, nil
}
