package models

import "time"

type ImportStatus string

const (
	ImportCompleted        ImportStatus = "completed"
	ImportPartial          ImportStatus = "partial"
	ImportValidationFailed ImportStatus = "validation_failed"
)

type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// RosterImportResult summarizes one roster upload.
type RosterImportResult struct {
	FileName       string           `json:"file_name"`
	TotalRows      int              `json:"total_rows"`
	ImportedCount  int              `json:"imported_count"`
	ErrorCount     int              `json:"error_count"`
	Errors         []ImportRowError `json:"errors,omitempty"`
	Students       []StudentMetrics `json:"students,omitempty"`
	Status         ImportStatus     `json:"status"`
	ProcessingTime time.Duration    `json:"processing_time"`
}
