package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/webdex/webdex"
)

// Compile-time interface verification.
var _ webdex.JobService = (*JobService)(nil)

// JobService implements webdex.JobService using SQLite.
type JobService struct {
	db *DB
}

// NewJobService creates a new JobService.
func NewJobService(db *DB) *JobService {
	return &JobService{db: db}
}

// CreateJob creates a new job record in the idle state.
func (s *JobService) CreateJob(ctx context.Context, job *webdex.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = webdex.JobIdle
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, source, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.Kind, job.Source, string(job.Status), job.Error,
		job.CreatedAt.Format(time.RFC3339), job.UpdatedAt.Format(time.RFC3339))

	return err
}

// UpdateJobStatus transitions a job and records an optional error message.
func (s *JobService) UpdateJobStatus(ctx context.Context, id string, status webdex.JobStatus, errMsg string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, string(status), errMsg, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return webdex.Errorf(webdex.ENOTFOUND, "job not found")
	}
	return nil
}

// FindJobByID retrieves a job by ID.
func (s *JobService) FindJobByID(ctx context.Context, id string) (*webdex.Job, error) {
	var job webdex.Job
	var status, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, source, status, error, created_at, updated_at
		FROM jobs
		WHERE id = ?
	`, id).Scan(&job.ID, &job.Kind, &job.Source, &status, &job.Error, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, webdex.Errorf(webdex.ENOTFOUND, "job not found")
	}
	if err != nil {
		return nil, err
	}

	job.Status = webdex.JobStatus(status)
	if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if job.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &job, nil
}

// FindJobs lists jobs, newest first.
func (s *JobService) FindJobs(ctx context.Context) ([]*webdex.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, source, status, error, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*webdex.Job
	for rows.Next() {
		var job webdex.Job
		var status, createdAt, updatedAt string

		if err := rows.Scan(&job.ID, &job.Kind, &job.Source, &status, &job.Error, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		job.Status = webdex.JobStatus(status)
		if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if job.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
