package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

type LocalStorage struct {
	root    string
	baseURL string // e.g. "http://localhost:8080/files"
}

// NewLocalStorage creates root if needed. root is made absolute so the
// traversal check below does not depend on the working directory.
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		root:    abs,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Root returns the absolute storage root.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) resolve(p string) (string, string, error) {
	key := filepath.ToSlash(filepath.Clean("/" + p))[1:]
	if key == "" || key == "." {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	full := filepath.Join(s.root, filepath.FromSlash(key))

	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return key, full, nil
}

func (s *LocalStorage) Upload(ctx context.Context, content io.Reader, p string, contentType string) (string, error) {
	key, full, err := s.resolve(p)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// write to a temp file first so readers never see a partial artifact
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return key, nil
}

func (s *LocalStorage) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	_, full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (s *LocalStorage) Delete(ctx context.Context, p string) error {
	_, full, err := s.resolve(p)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetURL returns a static URL; local files are served without signing.
func (s *LocalStorage) GetURL(ctx context.Context, p string, expiry time.Duration) (string, error) {
	key, _, err := s.resolve(p)
	if err != nil {
		return "", err
	}

	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + path.Join(segments...), nil
}

func (s *LocalStorage) Exists(ctx context.Context, p string) (bool, error) {
	_, full, err := s.resolve(p)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
