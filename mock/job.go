package mock

import (
	"context"

	"github.com/webdex/webdex"
)

var _ webdex.JobService = (*JobService)(nil)

// JobService is a mock implementation of webdex.JobService.
type JobService struct {
	CreateJobFn       func(ctx context.Context, job *webdex.Job) error
	UpdateJobStatusFn func(ctx context.Context, id string, status webdex.JobStatus, errMsg string) error
	FindJobByIDFn     func(ctx context.Context, id string) (*webdex.Job, error)
	FindJobsFn        func(ctx context.Context) ([]*webdex.Job, error)
}

func (s *JobService) CreateJob(ctx context.Context, job *webdex.Job) error {
	return s.CreateJobFn(ctx, job)
}

func (s *JobService) UpdateJobStatus(ctx context.Context, id string, status webdex.JobStatus, errMsg string) error {
	return s.UpdateJobStatusFn(ctx, id, status, errMsg)
}

func (s *JobService) FindJobByID(ctx context.Context, id string) (*webdex.Job, error) {
	return s.FindJobByIDFn(ctx, id)
}

func (s *JobService) FindJobs(ctx context.Context) ([]*webdex.Job, error) {
	return s.FindJobsFn(ctx)
}

var _ webdex.FileService = (*FileService)(nil)

// FileService is a mock implementation of webdex.FileService.
type FileService struct {
	CreateFilesFn    func(ctx context.Context, jobID string, files []webdex.FileEntry) error
	FindFilesByJobFn func(ctx context.Context, jobID string) ([]webdex.FileEntry, error)
}

func (s *FileService) CreateFiles(ctx context.Context, jobID string, files []webdex.FileEntry) error {
	return s.CreateFilesFn(ctx, jobID, files)
}

func (s *FileService) FindFilesByJob(ctx context.Context, jobID string) ([]webdex.FileEntry, error) {
	return s.FindFilesByJobFn(ctx, jobID)
}
