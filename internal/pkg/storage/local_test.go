package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)
	return s
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	// Act
	key, err := s.Upload(ctx, strings.NewReader("%PDF-1.3"), "payroll/2025/01/emp-1-salary.pdf", "application/pdf")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "payroll/2025/01/emp-1-salary.pdf", key)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(body))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStorage_TraversalStaysInsideRoot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	// Act
	key, err := s.Upload(ctx, strings.NewReader("x"), "../../outside.txt", "text/plain")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "outside.txt", key)
	_, statErr := os.Stat(filepath.Join(s.Root(), "outside.txt"))
	assert.NoError(t, statErr)
}

func TestLocalStorage_InvalidPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.Upload(ctx, strings.NewReader("x"), "", "text/plain")

	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.Download(ctx, "nope.pdf")

	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	key, err := s.Upload(ctx, strings.NewReader("x"), "a/b.txt", "text/plain")
	require.NoError(t, err)

	assert.NoError(t, s.Delete(ctx, key))
	assert.NoError(t, s.Delete(ctx, key))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_GetURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	u, err := s.GetURL(ctx, "payroll/2025/01/أحمد salary.pdf", 0)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/payroll/2025/01/%D8%A3%D8%AD%D9%85%D8%AF%20salary.pdf", u)
}
