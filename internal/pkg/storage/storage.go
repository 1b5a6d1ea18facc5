package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidPath  = errors.New("invalid file path")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage persists generated artifacts (payslips, notices, reports).
// Implementations are rooted at a directory or bucket given at construction;
// they never discover paths on their own.
type FileStorage interface {
	// Upload stores the content under path and returns the cleaned key
	Upload(ctx context.Context, content io.Reader, path string, contentType string) (string, error)

	// Download opens a stored artifact
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes an artifact; deleting a missing artifact is not an error
	Delete(ctx context.Context, path string) error

	// GetURL returns a link clients can fetch the artifact from
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists checks if an artifact is present
	Exists(ctx context.Context, path string) (bool, error)
}
