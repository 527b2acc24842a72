package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportRecord is one spreadsheet row flowing through the pipeline. It is
// created by the decoder, filled in by the auto-populator, classified by the
// row validator, and committed (or rejected) by the importer. The raw form is
// never persisted.
type ImportRecord struct {
	// RowNumber is the 1-based row in the source file, including the header
	// row, so errors point at what the actor sees in their spreadsheet.
	RowNumber int `json:"rowNumber"`

	DistributorID uuid.UUID `json:"distributorId,omitempty"`
	ContactName   string    `json:"contactName,omitempty"`
	ContactEmail  string    `json:"contactEmail,omitempty"`

	// Reference is the business identifier of the row: order number for
	// orders, receipt number for sales, period label for targets.
	Reference  string    `json:"reference"`
	RecordDate time.Time `json:"recordDate"`

	SKU         string          `json:"sku,omitempty"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency,omitempty"`

	// Issues are cell-level coercion problems found by the decoder. They ride
	// along with the record so the row validator can fold them into its own
	// findings and report everything wrong with the row in one pass.
	Issues []FieldError `json:"issues,omitempty"`

	// Provided lists fields the source file spelled out explicitly. It lets
	// the required-field check tell a deliberate 0.00 amount apart from an
	// absent cell, and survives the round trip through the client.
	Provided []string `json:"provided,omitempty"`
}

// FileStats describes the decoded file for the coarse constraint checks.
type FileStats struct {
	RowCount int   `json:"rowCount"`
	ByteSize int64 `json:"byteSize"`
}

// WithDistributor returns a copy with the distributor id set. Used by the
// auto-populator, which never overwrites an id the row already carries.
func (r ImportRecord) WithDistributor(id uuid.UUID) ImportRecord {
	r.DistributorID = id
	return r
}

// MarkProvided records that the source file carried a value for the field.
func (r *ImportRecord) MarkProvided(field string) {
	for _, f := range r.Provided {
		if f == field {
			return
		}
	}
	r.Provided = append(r.Provided, field)
}

// WasProvided reports whether the source file carried a value for the field.
func (r ImportRecord) WasProvided(field string) bool {
	for _, f := range r.Provided {
		if f == field {
			return true
		}
	}
	return false
}
