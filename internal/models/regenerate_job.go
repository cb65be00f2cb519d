package models

import "time"

type RegenerateRequest struct {
	Keys []string `json:"keys" binding:"required,min=1,dive,required"`
}

// RegenerateJob asks a worker to rebuild every thumbnail of the listed
// originals.
type RegenerateJob struct {
	ID        string    `json:"id"`
	Keys      []string  `json:"keys"`
	Attempt   int       `json:"attempt"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Error     string    `json:"error,omitempty"`
}

type RegenerateResult struct {
	Key        string `json:"key"`
	Status     string `json:"status"`
	Thumbnails int    `json:"thumbnails,omitempty"`
	Error      string `json:"error,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
)
