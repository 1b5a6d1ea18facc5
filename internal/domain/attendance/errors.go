package attendance

import "errors"

var (
	ErrAttendanceQueryFailed = errors.New("attendance query failed")
	ErrInvalidStatus         = errors.New("invalid attendance status")
)
