package notification

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
)

// Channel is how a notice reached, or will reach, the employee.
type Channel string

const (
	ChannelMessaging Channel = "messaging"
	ChannelQueued    Channel = "queued"
	ChannelShareLink Channel = "share_link"
)

// Message is one templated send through the messaging adapter.
type Message struct {
	Recipient  string
	TemplateID string
	Variables  map[string]string
	MediaURL   string
}

// DispatchIntent is a composed notice waiting to be sent. It is the payload
// of the notification queue.
type DispatchIntent struct {
	SalaryID    string               `json:"salary_id"`
	EmployeeID  string               `json:"employee_id"`
	Variant     report.NoticeVariant `json:"variant"`
	Recipient   string               `json:"recipient"`
	TemplateID  string               `json:"template_id"`
	Variables   map[string]string    `json:"variables"`
	ArtifactURL string               `json:"artifact_url,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

func (i DispatchIntent) Message() Message {
	return Message{
		Recipient:  i.Recipient,
		TemplateID: i.TemplateID,
		Variables:  i.Variables,
		MediaURL:   i.ArtifactURL,
	}
}

// Artifact is a stored notice PDF.
type Artifact struct {
	Path string
	URL  string
	Size int
}

// Result is the outcome for one salary record.
type Result struct {
	SalaryID   string
	EmployeeID string
	Recipient  string
	Channel    Channel
	OK         bool
	Message    string
	ShareLink  string
	Artifact   *Artifact
}

// BatchOutcome of a multi-record dispatch.
type BatchOutcome struct {
	SuccessCount int
	FailureCount int
	Errors       []string
	Results      []Result
}
