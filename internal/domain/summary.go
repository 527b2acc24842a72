package domain

import "github.com/google/uuid"

// ImportError is one entry in an ImportSummary's error list. Field-level
// entries carry Field and Code; batch-level entries carry Batch.
type ImportError struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Batch   int    `json:"batch,omitempty"`
}

// ImportSummary is the terminal artifact of one import. Invariant:
// Successful + Failed == Total.
type ImportSummary struct {
	ImportID   uuid.UUID     `json:"importId"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Errors     []ImportError `json:"errors,omitempty"`
}
