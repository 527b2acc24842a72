package importer

import (
	"context"

	"github.com/growship/backend/internal/domain"
	"github.com/growship/backend/internal/refloader"
	"github.com/growship/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RowValidator classifies populated records as valid or invalid against
// domain rules and live reference data. It performs no writes: the same
// input always yields the same outcome, so actors can edit and re-validate
// freely.
type RowValidator struct {
	productRepo     repository.ProductRepository
	distributorRepo repository.DistributorRepository
	limits          Limits
}

// NewRowValidator creates a validator over the reference-data lookups.
func NewRowValidator(
	productRepo repository.ProductRepository,
	distributorRepo repository.DistributorRepository,
	limits Limits,
) *RowValidator {
	return &RowValidator{
		productRepo:     productRepo,
		distributorRepo: distributorRepo,
		limits:          limits,
	}
}

// Validate partitions the records. Reference lookups are batched up front;
// a lookup failure degrades to per-row "cannot validate" errors instead of
// aborting the whole file.
func (v *RowValidator) Validate(ctx context.Context, kind domain.ImportKind, scope domain.TenantScope, records []domain.ImportRecord) (domain.ValidationOutcome, error) {
	outcome := domain.ValidationOutcome{
		Valid:   []domain.ImportRecord{},
		Invalid: []domain.InvalidRecord{},
	}

	spec, err := specFor(kind)
	if err != nil {
		return outcome, err
	}

	skuKnown, skuLookupErr := v.resolveSKUs(ctx, spec, scope, records)
	orgDistributors, distLookupErr := v.resolveDistributors(ctx, scope)

	for _, rec := range records {
		errs := v.checkRow(spec, scope, rec, skuKnown, skuLookupErr, orgDistributors, distLookupErr)
		if len(errs) == 0 {
			outcome.Valid = append(outcome.Valid, rec)
		} else {
			outcome.Invalid = append(outcome.Invalid, domain.InvalidRecord{Record: rec, Errors: errs})
		}
	}

	return outcome, nil
}

func (v *RowValidator) resolveSKUs(ctx context.Context, spec kindSpec, scope domain.TenantScope, records []domain.ImportRecord) (map[string]bool, error) {
	if !spec.checkSKU {
		return nil, nil
	}

	seen := make(map[string]bool)
	var skus []string
	for _, rec := range records {
		if rec.SKU != "" && !seen[rec.SKU] {
			seen[rec.SKU] = true
			skus = append(skus, rec.SKU)
		}
	}
	if len(skus) == 0 {
		return map[string]bool{}, nil
	}

	loader := refloader.NewProductLoader(v.productRepo, scope.OrganizationID)
	known, errs := loader.ExistsAll(ctx, skus)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return known, nil
}

func (v *RowValidator) resolveDistributors(ctx context.Context, scope domain.TenantScope) (map[uuid.UUID]bool, error) {
	distributors, err := v.distributorRepo.ListByOrganization(ctx, scope.OrganizationID)
	if err != nil {
		return nil, err
	}
	ids := make(map[uuid.UUID]bool, len(distributors))
	for _, d := range distributors {
		ids[d.ID] = true
	}
	return ids, nil
}

// checkRow runs the ordered rule set for one record. Recording stops at the
// per-row error cap; checking the remaining rows never does.
func (v *RowValidator) checkRow(
	spec kindSpec,
	scope domain.TenantScope,
	rec domain.ImportRecord,
	skuKnown map[string]bool,
	skuLookupErr error,
	orgDistributors map[uuid.UUID]bool,
	distLookupErr error,
) []domain.FieldError {
	var errs []domain.FieldError
	maxErrs := v.limits.MaxErrorsPerRow

	add := func(field, message, code string) bool {
		if maxErrs > 0 && len(errs) >= maxErrs {
			return false
		}
		errs = append(errs, domain.FieldError{
			Row:     rec.RowNumber,
			Field:   field,
			Message: message,
			Code:    code,
		})
		return true
	}

	// Decoder-stage cell issues come first; they already carry row context.
	for _, issue := range rec.Issues {
		if maxErrs > 0 && len(errs) >= maxErrs {
			break
		}
		errs = append(errs, issue)
	}

	for _, field := range spec.requiredFields {
		if fieldPresent(field, rec) {
			continue
		}
		name := field
		if field == "reference" {
			name = spec.referenceHeader
		}
		if !add(name, name+" is required", domain.CodeRequired) {
			return errs
		}
	}

	if spec.checkSKU && rec.SKU != "" {
		switch {
		case skuLookupErr != nil:
			add("sku", "cannot validate sku: reference data unavailable", domain.CodeLookupFailed)
		case !skuKnown[rec.SKU]:
			add("sku", "unknown sku "+rec.SKU, domain.CodeUnknownSKU)
		}
	}

	if rec.Quantity < 0 {
		add("quantity", "quantity must not be negative", domain.CodeNegativeValue)
	}
	if rec.UnitPrice.IsNegative() {
		add("unit_price", "unit price must not be negative", domain.CodeNegativeValue)
	}
	if rec.TotalAmount.IsNegative() {
		add("total_amount", "total amount must not be negative", domain.CodeNegativeValue)
	}
	if spec.hasLineItems && rec.Quantity > 0 && rec.UnitPrice.IsPositive() && rec.TotalAmount.IsPositive() {
		expected := rec.UnitPrice.Mul(decimal.NewFromInt(rec.Quantity))
		if !expected.Sub(rec.TotalAmount).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)) {
			add("total_amount", "total amount does not match quantity times unit price", domain.CodeAmountMismatch)
		}
	}

	if rec.DistributorID != uuid.Nil {
		switch {
		case distLookupErr != nil:
			add("distributor_id", "cannot validate distributor: reference data unavailable", domain.CodeLookupFailed)
		case !orgDistributors[rec.DistributorID]:
			// Rows may only reference distributors inside the resolved scope.
			add("distributor_id", "distributor does not belong to this organization", domain.CodeForeignTenant)
		}
	}

	return errs
}

func fieldPresent(field string, rec domain.ImportRecord) bool {
	switch field {
	case "reference":
		return rec.Reference != ""
	case "record_date":
		return !rec.RecordDate.IsZero()
	case "sku":
		return rec.SKU != ""
	case "total_amount":
		// A deliberate 0.00 in the file counts as present.
		return rec.WasProvided("total_amount") || !rec.TotalAmount.IsZero()
	case "distributor_id":
		return rec.DistributorID != uuid.Nil
	default:
		return true
	}
}
