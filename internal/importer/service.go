package importer

import (
	"context"
	"fmt"

	"github.com/growship/backend/internal/domain"
	"github.com/growship/backend/internal/repository"

	"github.com/google/uuid"
)

// Service exposes the pipeline as independent request/response steps. There
// is no in-process session: everything a later step needs (records, file
// hash, scope) is returned to the client and round-tripped back.
type Service struct {
	decoder         *Decoder
	guard           *Guard
	scopes          *ScopeResolver
	validator       *RowValidator
	committer       *Committer
	profileRepo     repository.ProfileRepository
	distributorRepo repository.DistributorRepository
	logRepo         repository.ImportLogRepository
	limits          Limits
}

// NewService wires the pipeline components. Every dependency is injected;
// nothing reaches for ambient state.
func NewService(
	profileRepo repository.ProfileRepository,
	distributorRepo repository.DistributorRepository,
	productRepo repository.ProductRepository,
	recordRepo repository.RecordRepository,
	logRepo repository.ImportLogRepository,
	limits Limits,
) *Service {
	guard := NewGuard(logRepo)
	return &Service{
		decoder:         NewDecoder(),
		guard:           guard,
		scopes:          NewScopeResolver(distributorRepo),
		validator:       NewRowValidator(productRepo, distributorRepo, limits),
		committer:       NewCommitter(recordRepo, logRepo, guard, limits),
		profileRepo:     profileRepo,
		distributorRepo: distributorRepo,
		logRepo:         logRepo,
		limits:          limits,
	}
}

// UploadRequest is the first step's input. ActorID comes from the session
// layer, never from the client payload.
type UploadRequest struct {
	ActorID        uuid.UUID
	Kind           domain.ImportKind
	FileName       string
	Payload        []byte
	OrganizationID uuid.UUID
	DistributorID  uuid.UUID
}

// UploadResult echoes the decoded records plus everything the client must
// round-trip into the later steps.
type UploadResult struct {
	Records                 []domain.ImportRecord `json:"records"`
	TotalCount              int                   `json:"totalCount"`
	FileHash                string                `json:"fileHash"`
	FileName                string                `json:"fileName"`
	FileSize                int64                 `json:"fileSize"`
	OrganizationID          uuid.UUID             `json:"organizationId"`
	ExtractedDistributorID  *uuid.UUID            `json:"extractedDistributorId,omitempty"`
	DistributorIDConsistent bool                  `json:"distributorIdConsistent"`
	Duplicate               *domain.PriorImport   `json:"previousImport,omitempty"`
}

// Upload decodes and bounds-checks the file, resolves scope, and runs the
// advisory duplicate check. No writes happen here.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	var result UploadResult

	actor, err := s.profileRepo.GetByUserID(ctx, req.ActorID)
	if err != nil {
		return result, fmt.Errorf("failed to resolve actor: %w", err)
	}

	records, stats, err := s.decoder.Decode(req.Kind, req.FileName, req.Payload)
	if err != nil {
		return result, err
	}

	if err := s.limits.CheckConstraints(stats); err != nil {
		return result, err
	}

	scope, err := s.scopes.Resolve(ctx, actor, ScopeRequest{
		OrganizationID: req.OrganizationID,
		DistributorID:  req.DistributorID,
	})
	if err != nil {
		return result, err
	}

	hash := Fingerprint(req.Payload)
	prior, err := s.guard.Check(ctx, domain.FileFingerprint{
		Hash:           hash,
		OrganizationID: scope.OrganizationID,
		UserID:         actor.UserID,
		Kind:           req.Kind,
	})
	if err != nil {
		return result, err
	}

	extracted, consistent := extractDistributor(records, scope)

	result = UploadResult{
		Records:                 records,
		TotalCount:              stats.RowCount,
		FileHash:                hash,
		FileName:                req.FileName,
		FileSize:                stats.ByteSize,
		OrganizationID:          scope.OrganizationID,
		ExtractedDistributorID:  extracted,
		DistributorIDConsistent: consistent,
		Duplicate:               prior,
	}
	return result, nil
}

// extractDistributor reports the single distributor id the file names, if
// any. Consistency is false when rows disagree with each other or with an
// explicitly requested scope.
func extractDistributor(records []domain.ImportRecord, scope domain.TenantScope) (*uuid.UUID, bool) {
	var extracted *uuid.UUID
	consistent := true
	for _, rec := range records {
		if rec.DistributorID == uuid.Nil {
			continue
		}
		id := rec.DistributorID
		if extracted == nil {
			extracted = &id
			continue
		}
		if *extracted != id {
			consistent = false
			break
		}
	}
	if extracted != nil && scope.DistributorID != uuid.Nil && *extracted != scope.DistributorID {
		consistent = false
	}
	return extracted, consistent
}

// ValidateRequest is the second step's input, round-tripped from upload.
type ValidateRequest struct {
	ActorID        uuid.UUID
	Kind           domain.ImportKind
	Records        []domain.ImportRecord
	OrganizationID uuid.UUID
	DistributorID  uuid.UUID
	FileHash       string
}

// ValidateResult carries the partition or, when the guard trips, the prior
// import reference instead.
type ValidateResult struct {
	Outcome   domain.ValidationOutcome
	Duplicate *domain.PriorImport
}

// Validate auto-populates the records and partitions them. Safe to call any
// number of times: it performs no writes and hides no state.
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	var result ValidateResult

	actor, err := s.profileRepo.GetByUserID(ctx, req.ActorID)
	if err != nil {
		return result, fmt.Errorf("failed to resolve actor: %w", err)
	}

	scope, err := s.scopes.Resolve(ctx, actor, ScopeRequest{
		OrganizationID: req.OrganizationID,
		DistributorID:  req.DistributorID,
	})
	if err != nil {
		return result, err
	}

	prior, err := s.guard.Check(ctx, domain.FileFingerprint{
		Hash:           req.FileHash,
		OrganizationID: scope.OrganizationID,
		UserID:         actor.UserID,
		Kind:           req.Kind,
	})
	if err != nil {
		return result, err
	}
	if prior != nil {
		result.Duplicate = prior
		return result, nil
	}

	var dist *domain.Distributor
	if scope.DistributorID != uuid.Nil {
		d, lookupErr := s.distributorRepo.GetByID(ctx, scope.DistributorID)
		if lookupErr == nil {
			dist = &d
		}
		// A failed counterparty lookup only weakens auto-population; the
		// validator still flags whatever stays empty.
	}

	populated := make([]domain.ImportRecord, len(req.Records))
	for i, rec := range req.Records {
		populated[i] = Populate(rec, scope, dist, actor)
	}

	outcome, err := s.validator.Validate(ctx, req.Kind, scope, populated)
	if err != nil {
		return result, err
	}

	result.Outcome = outcome
	return result, nil
}

// ConfirmRequest is the final step's input: the validated records plus the
// fingerprint context from upload.
type ConfirmRequest struct {
	ActorID        uuid.UUID
	Kind           domain.ImportKind
	Records        []domain.ImportRecord
	OrganizationID uuid.UUID
	DistributorID  uuid.UUID
	FileHash       string
	FileName       string
}

// Confirm commits the records. Scope is resolved fresh; whatever the
// validate step returned earlier, a foreign scope is rejected here with zero
// writes.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (domain.ImportSummary, error) {
	actor, err := s.profileRepo.GetByUserID(ctx, req.ActorID)
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("failed to resolve actor: %w", err)
	}

	scope, err := s.scopes.Resolve(ctx, actor, ScopeRequest{
		OrganizationID: req.OrganizationID,
		DistributorID:  req.DistributorID,
	})
	if err != nil {
		return domain.ImportSummary{}, err
	}

	return s.committer.Commit(ctx, CommitRequest{
		Kind:   req.Kind,
		Scope:  scope,
		UserID: actor.UserID,
		Fingerprint: domain.FileFingerprint{
			Hash:           req.FileHash,
			OrganizationID: scope.OrganizationID,
			UserID:         actor.UserID,
			Kind:           req.Kind,
		},
		FileName: req.FileName,
		Records:  req.Records,
	})
}

// History lists the actor's prior imports for their tenant.
func (s *Service) History(ctx context.Context, actorID uuid.UUID, organizationID uuid.UUID, limit, offset int) ([]domain.ImportLogEntry, error) {
	actor, err := s.profileRepo.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}

	scope, err := s.scopes.Resolve(ctx, actor, ScopeRequest{OrganizationID: organizationID})
	if err != nil {
		return nil, err
	}

	return s.logRepo.List(ctx, scope.OrganizationID, actor.UserID, limit, offset)
}
