package domain

import "fmt"

// ImportKind tags which business records a spreadsheet carries. The kind
// selects the column layout, required fields, and reference checks applied by
// the import pipeline.
type ImportKind string

const (
	ImportKindOrders  ImportKind = "orders"
	ImportKindSales   ImportKind = "sales"
	ImportKindTargets ImportKind = "targets"
)

// ParseImportKind validates a client-supplied kind string.
func ParseImportKind(raw string) (ImportKind, error) {
	switch ImportKind(raw) {
	case ImportKindOrders, ImportKindSales, ImportKindTargets:
		return ImportKind(raw), nil
	default:
		return "", fmt.Errorf("unknown import kind %q", raw)
	}
}

func (k ImportKind) String() string { return string(k) }
