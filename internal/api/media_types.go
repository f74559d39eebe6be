package api

import "quill/internal/models"

// MediaUploadResponse describes a stored, not yet claimed file.
type MediaUploadResponse struct {
	models.Media
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MediaGCRequest controls the orphan sweep. Without Apply the sweep only counts.
type MediaGCRequest struct {
	Apply     bool `json:"apply"`
	BatchSize int  `json:"batch_size,omitempty"`
}

// MediaGCResponse reports the orphan sweep result.
type MediaGCResponse struct {
	CandidateCount int   `json:"candidate_count"`
	DeletedCount   int   `json:"deleted_count"`
	FailedCount    int   `json:"failed_count"`
	ReclaimedBytes int64 `json:"reclaimed_bytes"`
	DryRun         bool  `json:"dry_run"`
}
