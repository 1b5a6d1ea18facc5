package notification

import (
	"errors"
	"fmt"
)

var (
	ErrAdapterFailure    = errors.New("messaging adapter failure")
	ErrMissingPhone      = errors.New("employee has no phone number")
	ErrMessagingDisabled = errors.New("messaging adapter is not configured")
	ErrInvalidIntent     = errors.New("invalid dispatch intent")
)

// AdapterError is a rejected send for one recipient.
type AdapterError struct {
	Recipient string
	Status    int
	Body      string
}

func (e *AdapterError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("send to %s failed: %s", e.Recipient, e.Body)
	}
	return fmt.Sprintf("send to %s failed with status %d: %s", e.Recipient, e.Status, e.Body)
}

func (e *AdapterError) Is(target error) bool {
	return target == ErrAdapterFailure
}
