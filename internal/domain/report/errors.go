package report

import (
	"errors"
	"fmt"
)

var (
	ErrAssetMissing   = errors.New("report asset missing")
	ErrInvalidVariant = errors.New("variant must be salary or deduction")
)

// AssetMissingError names the font or template file that could not be read.
type AssetMissingError struct {
	Path string
}

func (e *AssetMissingError) Error() string {
	return fmt.Sprintf("report asset missing: %s", e.Path)
}

func (e *AssetMissingError) Is(target error) bool {
	return target == ErrAssetMissing
}
