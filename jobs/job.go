package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Status is a stage in a job's life.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusPreparing Status = "preparing"
	StatusRendering Status = "rendering"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions happen from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Job is one short to produce, either from a topic or from an existing
// metadata file.
type Job struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic,omitempty"`
	Context      string    `json:"context,omitempty"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	Status       Status    `json:"status"`
	MetadataPath string    `json:"metadataPath,omitempty"`
	VideoPath    string    `json:"videoPath,omitempty"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	YouTubeID    string    `json:"youtubeId,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// New creates a queued job with a fresh ID.
func New(topic, metadataPath string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:           uuid.NewString(),
		Topic:        topic,
		MetadataPath: metadataPath,
		Status:       StatusQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// LogEntry is a single log line with timestamp.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"jobId,omitempty"`
	Message   string    `json:"message"`
}
