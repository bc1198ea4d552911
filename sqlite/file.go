package sqlite

import (
	"context"

	"github.com/webdex/webdex"
)

// Compile-time interface verification.
var _ webdex.FileService = (*FileService)(nil)

// FileService implements webdex.FileService using SQLite.
type FileService struct {
	db *DB
}

// NewFileService creates a new FileService.
func NewFileService(db *DB) *FileService {
	return &FileService{db: db}
}

// CreateFiles stores the file entries for a job, preserving order. All rows
// are written in one transaction so a job's entries are all-or-nothing.
func (s *FileService) CreateFiles(ctx context.Context, jobID string, files []webdex.FileEntry) error {
	if jobID == "" {
		return webdex.Errorf(webdex.EINVALID, "job ID required")
	}
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (job_id, position, name, url, type, size, text, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, file := range files {
		if _, err := stmt.ExecContext(ctx, jobID, i, file.Name, file.URL, file.Type, file.Size, file.Text, file.Hash); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindFilesByJob returns a job's file entries in stored order.
func (s *FileService) FindFilesByJob(ctx context.Context, jobID string) ([]webdex.FileEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, url, type, size, text, hash
		FROM files
		WHERE job_id = ?
		ORDER BY position
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []webdex.FileEntry
	for rows.Next() {
		var file webdex.FileEntry
		if err := rows.Scan(&file.Name, &file.URL, &file.Type, &file.Size, &file.Text, &file.Hash); err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}
