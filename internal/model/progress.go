package model

import "fmt"

// ImportStatus is the state of a backend import job.
type ImportStatus string

const (
	StatusRunning ImportStatus = "running"
	StatusDone    ImportStatus = "done"
	StatusError   ImportStatus = "error"
)

// Terminal reports whether polling should stop at this status.
func (s ImportStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Progress is the payload of GET /rest/import-progress/{jobId}.
type Progress struct {
	JobID     string       `json:"jobId,omitempty"`
	Status    ImportStatus `json:"status"`
	Processed int          `json:"processed"`
	Total     int          `json:"total"`
	Message   string       `json:"message"`
}

// Percent returns processed/total as 0..1. Zero totals report 0.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Processed) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Describe returns the backend message, or a processed/total summary when it is empty.
func (p Progress) Describe() string {
	if p.Message != "" {
		return p.Message
	}
	return fmt.Sprintf("Processing... %d/%d", p.Processed, p.Total)
}
