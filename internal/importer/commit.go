package importer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/growship/backend/internal/domain"
	"github.com/growship/backend/internal/repository"

	"github.com/google/uuid"
)

// Committer writes validated records in fixed-size batches. Each batch is
// one transaction; a failed batch is accounted for and the rest continue.
// Partial success is a first-class outcome.
type Committer struct {
	recordRepo repository.RecordRepository
	logRepo    repository.ImportLogRepository
	guard      *Guard
	limits     Limits
}

// NewCommitter creates a committer over the record and log repositories.
func NewCommitter(
	recordRepo repository.RecordRepository,
	logRepo repository.ImportLogRepository,
	guard *Guard,
	limits Limits,
) *Committer {
	return &Committer{
		recordRepo: recordRepo,
		logRepo:    logRepo,
		guard:      guard,
		limits:     limits,
	}
}

// CommitRequest carries everything the committer needs for one invocation.
type CommitRequest struct {
	Kind        domain.ImportKind
	Scope       domain.TenantScope
	UserID      uuid.UUID
	Fingerprint domain.FileFingerprint
	FileName    string
	Records     []domain.ImportRecord
}

// Commit re-checks the idempotency guard, writes the records in batches, and
// appends exactly one import-log entry whatever happens. The log append is
// where the storage-layer uniqueness constraint has the final say on races.
func (c *Committer) Commit(ctx context.Context, req CommitRequest) (domain.ImportSummary, error) {
	summary := domain.ImportSummary{Total: len(req.Records)}

	// Authoritative duplicate re-check: time has passed since validation and
	// a concurrent confirm may have landed first.
	prior, err := c.guard.Check(ctx, req.Fingerprint)
	if err != nil {
		return summary, fmt.Errorf("pre-commit duplicate check failed: %w", err)
	}
	if prior != nil {
		return summary, domain.DuplicateError(*prior)
	}

	importID := uuid.New()
	summary.ImportID = importID

	batchSize := c.limits.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultLimits().BatchSize
	}

	opts := repository.BatchOptions{
		OrganizationID: req.Scope.OrganizationID,
		DistributorID:  req.Scope.DistributorID,
		UserID:         req.UserID,
		ImportID:       importID,
	}

	batchNumber := 0
	for start := 0; start < len(req.Records); start += batchSize {
		end := start + batchSize
		if end > len(req.Records) {
			end = len(req.Records)
		}
		batch := req.Records[start:end]
		batchNumber++

		if writeErr := c.recordRepo.CreateBatch(ctx, req.Kind, opts, batch); writeErr != nil {
			log.Printf("[IMPORT] batch %d of import %s failed: %v", batchNumber, importID, writeErr)
			summary.Failed += len(batch)
			summary.Errors = append(summary.Errors, domain.ImportError{
				Batch:   batchNumber,
				Message: fmt.Sprintf("batch %d failed (rows %s): %v", batchNumber, rowRange(batch), writeErr),
				Code:    domain.CodeBatchWriteFailed,
			})
			continue
		}
		summary.Successful += len(batch)
	}

	entry := domain.ImportLogEntry{
		ID:             importID,
		OrganizationID: req.Scope.OrganizationID,
		DistributorID:  req.Scope.DistributorID,
		UserID:         req.UserID,
		Kind:           req.Kind,
		FileHash:       req.Fingerprint.Hash,
		FileName:       req.FileName,
		TotalRows:      summary.Total,
		SuccessfulRows: summary.Successful,
		FailedRows:     summary.Failed,
		Status:         domain.StatusFor(summary.Successful, summary.Failed),
	}

	if _, logErr := c.logRepo.Append(ctx, entry); logErr != nil {
		if domain.KindOf(logErr) == domain.ErrDuplicateImport {
			// The uniqueness constraint ruled a concurrent confirm the
			// winner. Its verdict is final: undo this invocation's rows so
			// exactly one import's records remain, then surface the winner.
			if summary.Successful > 0 {
				if delErr := c.recordRepo.DeleteByImport(ctx, req.Kind, importID); delErr != nil {
					log.Printf("[IMPORT] failed to remove rows of superseded import %s: %v", importID, delErr)
				}
			}
			return domain.ImportSummary{ImportID: importID, Total: summary.Total}, logErr
		}
		// The rows are committed; a log failure must not hide that from the
		// actor, but it does need to be visible.
		log.Printf("[IMPORT] failed to append import log for %s: %v", importID, logErr)
		summary.Errors = append(summary.Errors, domain.ImportError{
			Message: "import completed but the import log entry could not be written",
			Code:    domain.CodeBatchWriteFailed,
		})
	}

	return summary, nil
}

// rowRange renders the source row numbers of a batch for error messages.
func rowRange(batch []domain.ImportRecord) string {
	if len(batch) == 0 {
		return ""
	}
	rows := make([]string, len(batch))
	for i, rec := range batch {
		rows[i] = fmt.Sprintf("%d", rec.RowNumber)
	}
	if len(rows) > 6 {
		return fmt.Sprintf("%s-%s", rows[0], rows[len(rows)-1])
	}
	return strings.Join(rows, ", ")
}
