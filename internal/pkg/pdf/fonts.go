// Package pdf wraps gofpdf with Arabic-capable fonts and right-to-left tables.
package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var ErrFontMissing = errors.New("font file missing")

// MissingFontError names the absent font file.
type MissingFontError struct {
	Path string
}

func (e *MissingFontError) Error() string {
	return fmt.Sprintf("font file missing: %s", e.Path)
}

func (e *MissingFontError) Is(target error) bool {
	return target == ErrFontMissing
}

// FontSet is a regular and bold TTF pair.
type FontSet struct {
	Regular []byte
	Bold    []byte
}

// FontSource loads the font pair on first use and keeps it. A failed load
// is not cached, so dropping the files in place fixes a running server.
type FontSource struct {
	regularPath string
	boldPath    string

	mu    sync.Mutex
	fonts *FontSet
}

func NewFontSource(dir, regular, bold string) *FontSource {
	return &FontSource{
		regularPath: filepath.Join(dir, regular),
		boldPath:    filepath.Join(dir, bold),
	}
}

func (s *FontSource) Load() (*FontSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fonts != nil {
		return s.fonts, nil
	}

	regular, err := readFont(s.regularPath)
	if err != nil {
		return nil, err
	}
	bold, err := readFont(s.boldPath)
	if err != nil {
		return nil, err
	}

	s.fonts = &FontSet{Regular: regular, Bold: bold}
	return s.fonts, nil
}

func readFont(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingFontError{Path: path}
		}
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	if len(b) == 0 {
		return nil, &MissingFontError{Path: path}
	}
	return b, nil
}
