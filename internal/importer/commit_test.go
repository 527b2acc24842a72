package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/growship/backend/internal/domain"
	"github.com/growship/backend/internal/repository"

	"github.com/google/uuid"
)

func testCommitRequest(records []domain.ImportRecord) CommitRequest {
	orgID := uuid.New()
	userID := uuid.New()
	return CommitRequest{
		Kind:   domain.ImportKindOrders,
		Scope:  domain.TenantScope{OrganizationID: orgID},
		UserID: userID,
		Fingerprint: domain.FileFingerprint{
			Hash:           "abc123",
			OrganizationID: orgID,
			UserID:         userID,
			Kind:           domain.ImportKindOrders,
		},
		FileName: "orders.csv",
		Records:  records,
	}
}

func makeRecords(n int) []domain.ImportRecord {
	records := make([]domain.ImportRecord, n)
	for i := range records {
		records[i] = domain.ImportRecord{RowNumber: i + 2, Reference: "PO"}
	}
	return records
}

func TestCommitFullSuccess(t *testing.T) {
	records := &stubRecordRepo{}
	logs := &stubLogRepo{}
	committer := NewCommitter(records, logs, NewGuard(logs), DefaultLimits())

	summary, err := committer.Commit(context.Background(), testCommitRequest(makeRecords(5)))
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if summary.Total != 5 || summary.Successful != 5 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Successful+summary.Failed != summary.Total {
		t.Fatalf("summary arithmetic broken: %+v", summary)
	}
	if len(logs.entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(logs.entries))
	}
	entry := logs.entries[0]
	if entry.Status != domain.ImportStatusSuccess {
		t.Fatalf("expected success status, got %s", entry.Status)
	}
	if entry.ID != summary.ImportID {
		t.Fatalf("log entry id must match the summary import id")
	}
	if entry.FileHash != "abc123" {
		t.Fatalf("expected fingerprint on log entry, got %q", entry.FileHash)
	}
}

func TestCommitBatchPartialFailure(t *testing.T) {
	records := &stubRecordRepo{failBatch: 2}
	logs := &stubLogRepo{}
	committer := NewCommitter(records, logs, NewGuard(logs), DefaultLimits())

	summary, err := committer.Commit(context.Background(), testCommitRequest(makeRecords(2500)))
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}

	// Batch 2 holds rows 1001 through 2000 of the file, so its loss costs
	// exactly one full batch of 1000.
	if summary.Total != 2500 || summary.Successful != 1500 || summary.Failed != 1000 {
		t.Fatalf("expected 1500/1000 of 2500, got %+v", summary)
	}
	if records.batches != 3 {
		t.Fatalf("expected all 3 batches attempted, got %d", records.batches)
	}
	if len(records.written) != 1500 {
		t.Fatalf("expected batches 1 and 3 committed, got %d rows", len(records.written))
	}

	if len(summary.Errors) != 1 {
		t.Fatalf("expected one batch error, got %+v", summary.Errors)
	}
	batchErr := summary.Errors[0]
	if batchErr.Batch != 2 || batchErr.Code != domain.CodeBatchWriteFailed {
		t.Fatalf("expected batch 2 write failure, got %+v", batchErr)
	}
	// Batch 2 covers source rows 1002 through 2001 (rows start at 2).
	if !strings.Contains(batchErr.Message, "1002") || !strings.Contains(batchErr.Message, "2001") {
		t.Fatalf("expected the failed row range in the message, got %q", batchErr.Message)
	}

	if len(logs.entries) != 1 {
		t.Fatalf("expected one log entry even on partial failure, got %d", len(logs.entries))
	}
	if logs.entries[0].Status != domain.ImportStatusPartial {
		t.Fatalf("expected partial status, got %s", logs.entries[0].Status)
	}
}

func TestCommitTotalFailureStillLogs(t *testing.T) {
	records := &stubRecordRepo{failBatch: 1}
	logs := &stubLogRepo{}
	committer := NewCommitter(records, logs, NewGuard(logs), DefaultLimits())

	summary, err := committer.Commit(context.Background(), testCommitRequest(makeRecords(10)))
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}
	if summary.Successful != 0 || summary.Failed != 10 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(logs.entries) != 1 {
		t.Fatalf("the log entry is written even on total failure, got %d entries", len(logs.entries))
	}
	if logs.entries[0].Status != domain.ImportStatusFailed {
		t.Fatalf("expected failed status, got %s", logs.entries[0].Status)
	}
}

func TestCommitAbortsOnPriorImport(t *testing.T) {
	records := &stubRecordRepo{}
	priorID := uuid.New()
	logs := &stubLogRepo{prior: &domain.PriorImport{ID: priorID, RecordCount: 5}}
	committer := NewCommitter(records, logs, NewGuard(logs), DefaultLimits())

	_, err := committer.Commit(context.Background(), testCommitRequest(makeRecords(10)))
	if domain.KindOf(err) != domain.ErrDuplicateImport {
		t.Fatalf("expected duplicate import, got %v", err)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Prior == nil || de.Prior.ID != priorID {
		t.Fatalf("expected the prior import reference, got %v", err)
	}
	if records.batches != 0 {
		t.Fatalf("a duplicate must abort with zero writes, got %d batches", records.batches)
	}
	if len(logs.entries) != 0 {
		t.Fatalf("a duplicate must not add a log entry, got %d", len(logs.entries))
	}
}

func TestCommitLostAppendRaceSurfacesDuplicate(t *testing.T) {
	// Every batch fails, then the log append hits the uniqueness constraint:
	// a concurrent confirm won. Nothing was written here, so the duplicate is
	// the whole answer.
	records := &stubRecordRepo{failBatch: 1}
	logs := &stubLogRepo{appendErr: domain.DuplicateError(domain.PriorImport{ID: uuid.New()})}
	committer := NewCommitter(records, logs, NewGuard(logs), DefaultLimits())

	_, err := committer.Commit(context.Background(), testCommitRequest(makeRecords(10)))
	if domain.KindOf(err) != domain.ErrDuplicateImport {
		t.Fatalf("expected the race winner to surface, got %v", err)
	}
}

// raceLogRepo reproduces the storage uniqueness constraint: the first
// accepted append for a fingerprint wins, later ones get the duplicate error.
type raceLogRepo struct {
	accepted map[string]domain.PriorImport
	entries  []domain.ImportLogEntry
}

var _ repository.ImportLogRepository = (*raceLogRepo)(nil)

func raceKey(hash string, orgID, userID uuid.UUID, kind domain.ImportKind) string {
	return fmt.Sprintf("%s|%s|%s|%s", hash, orgID, userID, kind)
}

func (s *raceLogRepo) Append(ctx context.Context, entry domain.ImportLogEntry) (domain.ImportLogEntry, error) {
	if entry.SuccessfulRows > 0 {
		key := raceKey(entry.FileHash, entry.OrganizationID, entry.UserID, entry.Kind)
		if prior, ok := s.accepted[key]; ok {
			return domain.ImportLogEntry{}, domain.DuplicateError(prior)
		}
		s.accepted[key] = domain.PriorImport{
			ID:          entry.ID,
			RecordCount: entry.SuccessfulRows,
			FileName:    entry.FileName,
		}
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *raceLogRepo) FindAccepted(ctx context.Context, fp domain.FileFingerprint) (*domain.PriorImport, error) {
	if prior, ok := s.accepted[raceKey(fp.Hash, fp.OrganizationID, fp.UserID, fp.Kind)]; ok {
		return &prior, nil
	}
	return nil, nil
}

func (s *raceLogRepo) List(ctx context.Context, organizationID uuid.UUID, userID uuid.UUID, limit int, offset int) ([]domain.ImportLogEntry, error) {
	return nil, nil
}

// raceRecordRepo keeps per-import row counts and lets a test interleave a
// rival commit in the middle of the first batch write.
type raceRecordRepo struct {
	rows         map[uuid.UUID]int
	onFirstBatch func()
}

var _ repository.RecordRepository = (*raceRecordRepo)(nil)

func (s *raceRecordRepo) CreateBatch(ctx context.Context, kind domain.ImportKind, opts repository.BatchOptions, records []domain.ImportRecord) error {
	s.rows[opts.ImportID] += len(records)
	if hook := s.onFirstBatch; hook != nil {
		s.onFirstBatch = nil
		hook()
	}
	return nil
}

func (s *raceRecordRepo) DeleteByImport(ctx context.Context, kind domain.ImportKind, importID uuid.UUID) error {
	delete(s.rows, importID)
	return nil
}

func TestCommitConcurrentConfirmLeavesOneWinner(t *testing.T) {
	// Two confirms of the same file overlap. The one that reaches the log
	// first keeps its rows; the other must undo its writes and report the
	// winner, so the records land exactly once.
	records := &raceRecordRepo{rows: map[uuid.UUID]int{}}
	logs := &raceLogRepo{accepted: map[string]domain.PriorImport{}}
	committer := NewCommitter(records, logs, NewGuard(logs), DefaultLimits())
	req := testCommitRequest(makeRecords(5))

	var rivalSummary domain.ImportSummary
	var rivalErr error
	records.onFirstBatch = func() {
		rivalSummary, rivalErr = committer.Commit(context.Background(), req)
	}

	_, err := committer.Commit(context.Background(), req)
	if domain.KindOf(err) != domain.ErrDuplicateImport {
		t.Fatalf("the overlapped confirm must lose as a duplicate, got %v", err)
	}
	if rivalErr != nil {
		t.Fatalf("the winning confirm must succeed: %v", rivalErr)
	}
	if rivalSummary.Successful != 5 {
		t.Fatalf("unexpected winner summary: %+v", rivalSummary)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Prior == nil || de.Prior.ID != rivalSummary.ImportID {
		t.Fatalf("the loser must reference the winning import, got %v", err)
	}

	total := 0
	for _, n := range records.rows {
		total += n
	}
	if total != 5 {
		t.Fatalf("exactly one import's rows must remain, got %d", total)
	}
	if len(logs.accepted) != 1 {
		t.Fatalf("expected one accepted log entry, got %d", len(logs.accepted))
	}
}

func TestCommitLogAppendFailureIsReportedNotFatal(t *testing.T) {
	records := &stubRecordRepo{}
	logs := &stubLogRepo{appendErr: errors.New("log table unavailable")}
	committer := NewCommitter(records, logs, NewGuard(logs), DefaultLimits())

	summary, err := committer.Commit(context.Background(), testCommitRequest(makeRecords(3)))
	if err != nil {
		t.Fatalf("rows are committed; a log failure must not fail the call: %v", err)
	}
	if summary.Successful != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) == 0 {
		t.Fatalf("expected the log failure to be visible in the summary")
	}
}
