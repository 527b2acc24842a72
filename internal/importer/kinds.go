package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// cellSetter coerces one raw cell into its ImportRecord field. A non-nil
// FieldError marks the cell unusable; the row still flows on so the validator
// can report every problem at once.
type cellSetter func(rec *domain.ImportRecord, raw string) *domain.FieldError

// kindSpec declares how one import kind reads its spreadsheet: which column
// headers map to which fields, which fields must be present after
// auto-population, and which reference checks run. One parameterized pipeline
// instead of per-kind handler copies.
type kindSpec struct {
	kind domain.ImportKind
	// columns maps sanitized header names to field setters. referenceHeader
	// names the business-identifier column so error messages use the header
	// the actor sees.
	columns         map[string]cellSetter
	referenceHeader string
	// requiredColumns must appear in the header row; absence is a parse
	// failure before any row is read.
	requiredColumns []string
	// requiredFields are checked per row after auto-population.
	requiredFields []string
	checkSKU       bool
	hasLineItems   bool
}

func specFor(kind domain.ImportKind) (kindSpec, error) {
	switch kind {
	case domain.ImportKindOrders:
		return orderSpec, nil
	case domain.ImportKindSales:
		return salesSpec, nil
	case domain.ImportKindTargets:
		return targetSpec, nil
	default:
		return kindSpec{}, fmt.Errorf("unknown import kind %q", kind)
	}
}

var (
	orderSpec = kindSpec{
		kind: domain.ImportKindOrders,
		columns: mergeColumns(map[string]cellSetter{
			"order_number": setReference,
			"order_date":   setRecordDate,
		}, lineItemColumns, contactColumns),
		referenceHeader: "order_number",
		requiredColumns: []string{"order_number", "order_date", "sku", "quantity", "total_amount"},
		requiredFields:  []string{"reference", "record_date", "sku", "total_amount", "distributor_id"},
		checkSKU:        true,
		hasLineItems:    true,
	}

	salesSpec = kindSpec{
		kind: domain.ImportKindSales,
		columns: mergeColumns(map[string]cellSetter{
			"receipt_number": setReference,
			"sale_date":      setRecordDate,
		}, lineItemColumns, contactColumns),
		referenceHeader: "receipt_number",
		requiredColumns: []string{"receipt_number", "sale_date", "sku", "quantity", "total_amount"},
		requiredFields:  []string{"reference", "record_date", "sku", "total_amount", "distributor_id"},
		checkSKU:        true,
		hasLineItems:    true,
	}

	targetSpec = kindSpec{
		kind: domain.ImportKindTargets,
		columns: mergeColumns(map[string]cellSetter{
			"period":        setReference,
			"target_date":   setRecordDate,
			"target_amount": setTotalAmount,
			"currency":      setCurrency,
		}, contactColumns),
		referenceHeader: "period",
		requiredColumns: []string{"period", "target_amount"},
		requiredFields:  []string{"reference", "total_amount", "distributor_id"},
	}
)

// lineItemColumns are shared by the order and sales layouts.
var lineItemColumns = map[string]cellSetter{
	"sku":          setSKU,
	"product_name": setProductName,
	"quantity":     setQuantity,
	"unit_price":   setUnitPrice,
	"total_amount": setTotalAmount,
	"currency":     setCurrency,
}

var contactColumns = map[string]cellSetter{
	"distributor_id": setDistributorID,
	"contact_name":   setContactName,
	"contact_email":  setContactEmail,
}

func mergeColumns(sets ...map[string]cellSetter) map[string]cellSetter {
	merged := make(map[string]cellSetter)
	for _, set := range sets {
		for name, setter := range set {
			merged[name] = setter
		}
	}
	return merged
}

func setReference(rec *domain.ImportRecord, raw string) *domain.FieldError {
	rec.Reference = raw
	return nil
}

func setRecordDate(rec *domain.ImportRecord, raw string) *domain.FieldError {
	ts, err := parseDate(raw)
	if err != nil {
		return cellError(rec.RowNumber, "record_date", "unrecognized date %q", raw)
	}
	rec.RecordDate = ts
	return nil
}

func setDistributorID(rec *domain.ImportRecord, raw string) *domain.FieldError {
	id, err := uuid.Parse(raw)
	if err != nil {
		return cellError(rec.RowNumber, "distributor_id", "invalid distributor id %q", raw)
	}
	rec.DistributorID = id
	return nil
}

func setContactName(rec *domain.ImportRecord, raw string) *domain.FieldError {
	rec.ContactName = raw
	return nil
}

func setContactEmail(rec *domain.ImportRecord, raw string) *domain.FieldError {
	if raw != "" && !strings.Contains(raw, "@") {
		return cellError(rec.RowNumber, "contact_email", "invalid email %q", raw)
	}
	rec.ContactEmail = raw
	return nil
}

func setSKU(rec *domain.ImportRecord, raw string) *domain.FieldError {
	rec.SKU = raw
	return nil
}

func setProductName(rec *domain.ImportRecord, raw string) *domain.FieldError {
	rec.ProductName = raw
	return nil
}

func setQuantity(rec *domain.ImportRecord, raw string) *domain.FieldError {
	qty, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return cellError(rec.RowNumber, "quantity", "unable to read quantity %q", raw)
	}
	rec.Quantity = qty
	return nil
}

func setUnitPrice(rec *domain.ImportRecord, raw string) *domain.FieldError {
	amount, err := parseAmount(raw)
	if err != nil {
		return cellError(rec.RowNumber, "unit_price", "unable to read amount %q", raw)
	}
	rec.UnitPrice = amount
	return nil
}

func setTotalAmount(rec *domain.ImportRecord, raw string) *domain.FieldError {
	amount, err := parseAmount(raw)
	if err != nil {
		return cellError(rec.RowNumber, "total_amount", "unable to read amount %q", raw)
	}
	rec.TotalAmount = amount
	rec.MarkProvided("total_amount")
	return nil
}

func setCurrency(rec *domain.ImportRecord, raw string) *domain.FieldError {
	rec.Currency = strings.ToUpper(raw)
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return decimal.NewFromString(cleaned)
}

func cellError(row int, field, format string, args ...any) *domain.FieldError {
	return &domain.FieldError{
		Row:     row,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    domain.CodeInvalidValue,
	}
}
