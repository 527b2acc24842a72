package domain

// FieldError is one per-row, per-field validation failure. Non-terminal:
// field errors are aggregated, never raised as Go errors past the validator.
type FieldError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Field error codes surfaced to clients.
const (
	CodeRequired         = "required"
	CodeUnknownSKU       = "unknown_sku"
	CodeNegativeValue    = "negative_value"
	CodeAmountMismatch   = "amount_mismatch"
	CodeForeignTenant    = "foreign_tenant"
	CodeLookupFailed     = "lookup_failed"
	CodeInvalidValue     = "invalid_value"
	CodeDuplicateRow     = "duplicate_row"
	CodeBatchWriteFailed = "batch_write_failed"
)

// InvalidRecord pairs a rejected record with everything wrong with it.
type InvalidRecord struct {
	Record ImportRecord `json:"record"`
	Errors []FieldError `json:"errors"`
}

// ValidationOutcome partitions the validator's input. Every input record
// lands in exactly one of the two slices.
type ValidationOutcome struct {
	Valid   []ImportRecord  `json:"validRecords"`
	Invalid []InvalidRecord `json:"invalidRecords"`
}

// IsAcceptable reports whether the outcome can proceed to commit: no invalid
// rows and at least one valid one.
func (o ValidationOutcome) IsAcceptable() bool {
	return len(o.Invalid) == 0 && len(o.Valid) > 0
}

// FieldErrors flattens the per-record errors in row order.
func (o ValidationOutcome) FieldErrors() []FieldError {
	var errs []FieldError
	for _, inv := range o.Invalid {
		errs = append(errs, inv.Errors...)
	}
	return errs
}
