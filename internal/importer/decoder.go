package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/growship/backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Decoder turns an uploaded spreadsheet into typed import records. It is a
// pure transform: no lookups, no writes.
type Decoder struct{}

// NewDecoder creates a decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses the file for the given kind. The extension selects the
// format; anything outside the allowed set fails with UnsupportedFormat and
// structural damage fails with ParseError. Neither should be retried.
func (d *Decoder) Decode(kind domain.ImportKind, fileName string, payload []byte) ([]domain.ImportRecord, domain.FileStats, error) {
	stats := domain.FileStats{ByteSize: int64(len(payload))}

	spec, err := specFor(kind)
	if err != nil {
		return nil, stats, domain.WrapError(domain.ErrParse, err, "cannot decode file")
	}

	if len(payload) == 0 {
		return nil, stats, domain.NewError(domain.ErrParse, "file is empty")
	}

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		rows, err = readCSV(payload)
	case ".xlsx":
		rows, err = readExcel(payload)
	default:
		return nil, stats, domain.NewError(domain.ErrUnsupportedFormat, "unsupported file format %q", ext)
	}
	if err != nil {
		return nil, stats, domain.WrapError(domain.ErrParse, err, "failed to parse %s", fileName)
	}

	records, err := buildRecords(spec, rows)
	if err != nil {
		return nil, stats, err
	}

	stats.RowCount = len(records)
	return records, stats, nil
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func readExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

// buildRecords maps the header row onto the kind's column set and coerces
// every data row. Cell coercion failures do not abort the decode; they are
// attached to the record for the validator to report.
func buildRecords(spec kindSpec, rows [][]string) ([]domain.ImportRecord, error) {
	headerIdx := -1
	for idx, row := range rows {
		if !rowEmpty(row) {
			headerIdx = idx
			break
		}
	}
	if headerIdx < 0 {
		return nil, domain.NewError(domain.ErrParse, "no header row found")
	}

	headers := sanitizeHeaders(rows[headerIdx])
	position := make(map[string]int, len(headers))
	for idx, name := range headers {
		if _, known := spec.columns[name]; known {
			if _, dup := position[name]; !dup {
				position[name] = idx
			}
		}
	}

	for _, required := range spec.requiredColumns {
		if _, ok := position[required]; !ok {
			return nil, domain.NewError(domain.ErrParse, "missing required column %q", required)
		}
	}

	var records []domain.ImportRecord
	for idx := headerIdx + 1; idx < len(rows); idx++ {
		row := rows[idx]
		if rowEmpty(row) {
			continue
		}

		rec := domain.ImportRecord{RowNumber: idx + 1}
		for name, col := range position {
			if col >= len(row) {
				continue
			}
			raw := strings.TrimSpace(row[col])
			if raw == "" {
				continue
			}
			if fieldErr := spec.columns[name](&rec, raw); fieldErr != nil {
				rec.Issues = append(rec.Issues, *fieldErr)
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, ".", "_")
		name = strings.ReplaceAll(name, "-", "_")
		headers[idx] = strings.Trim(name, "_")
	}
	return headers
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
