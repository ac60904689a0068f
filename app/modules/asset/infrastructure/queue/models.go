package assetqueue

import "github.com/google/uuid"

const queueName = "asset"

// ImageRowDeleteJob deletes the row of an image whose file is already archived.
type ImageRowDeleteJob struct {
	ImageID uuid.UUID `json:"image_id"`
}

// Kind returns the job type identifier for River
func (ImageRowDeleteJob) Kind() string { return "image_row_delete" }

// ReconcileArchiveJob completes deletes left between the file move and the row delete.
type ReconcileArchiveJob struct{}

// Kind returns the job type identifier for River
func (ReconcileArchiveJob) Kind() string { return "image_archive_reconcile" }

// JobInfo represents information about a queued job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	ImageID     string `json:"image_id,omitempty"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
