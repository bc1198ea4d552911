package webdex

import (
	"context"
	"time"
)

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

// Job lifecycle states. A run moves idle → running → one of the terminal
// states.
const (
	JobIdle      JobStatus = "idle"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
	JobFailed    JobStatus = "failed"
)

// Job kinds.
const (
	JobKindCrawl = "crawl"
	JobKindRepo  = "repo"
)

// Job is one ingestion run as persisted by the caller. The core never reads
// or writes job records; it only reports outcomes.
type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the job contains invalid fields.
func (j *Job) Validate() error {
	if j.Kind != JobKindCrawl && j.Kind != JobKindRepo {
		return Errorf(EINVALID, "unknown job kind %q", j.Kind)
	}
	if j.Source == "" {
		return Errorf(EINVALID, "job source required")
	}
	return nil
}

// JobService persists job records. Implemented by an external collaborator;
// core packages never depend on it.
type JobService interface {
	// CreateJob creates a new job record.
	CreateJob(ctx context.Context, job *Job) error

	// UpdateJobStatus transitions a job and records an optional error
	// message. Returns ENOTFOUND if the job does not exist.
	UpdateJobStatus(ctx context.Context, id string, status JobStatus, errMsg string) error

	// FindJobByID retrieves a job by ID.
	// Returns ENOTFOUND if the job does not exist.
	FindJobByID(ctx context.Context, id string) (*Job, error)

	// FindJobs lists jobs, newest first.
	FindJobs(ctx context.Context) ([]*Job, error)
}

// FileService persists the ordered file entries a run emits.
type FileService interface {
	// CreateFiles stores the file entries for a job, preserving order.
	CreateFiles(ctx context.Context, jobID string, files []FileEntry) error

	// FindFilesByJob returns a job's file entries in stored order.
	FindFilesByJob(ctx context.Context, jobID string) ([]FileEntry, error)
}
