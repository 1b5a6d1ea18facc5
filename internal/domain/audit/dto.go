package audit

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ParseFilter reads entity_type, action and limit query values.
func ParseFilter(entityType, action, limit string) (Filter, error) {
	var errs validator.ValidationErrors
	f := Filter{Limit: DefaultListLimit}

	if entityType != "" {
		f.EntityType = &entityType
	}
	if action != "" {
		f.Action = &action
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || !validator.IsInRange(n, 1, MaxListLimit) {
			errs.Add("limit", "must be between 1 and "+strconv.Itoa(MaxListLimit))
		} else {
			f.Limit = n
		}
	}

	if err := errs.OrNil(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

type EntryResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	UserID     *string         `json:"user_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func ToEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		UserID:     e.UserID,
		CreatedAt:  e.CreatedAt,
	}
}
