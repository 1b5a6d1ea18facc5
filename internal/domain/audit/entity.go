package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionPayrollBatch      = "payroll.batch_recompute"
	ActionSalaryUpsert      = "payroll.salary_upsert"
	ActionSalaryDelete      = "payroll.salary_delete"
	ActionReportRowFailed   = "report.row_render_failed"
	ActionNotificationSent  = "notification.dispatch"
	ActionEmployeeDelete    = "employee.delete"
	ActionDepartmentDelete  = "department.delete"
	EntitySalaryBatch       = "salary_batch"
	EntitySalaryRecord      = "salary_record"
	EntityEmployee          = "employee"
	EntityDepartment        = "department"
	EntitySalaryReport      = "salary_report"
	EntityNotificationBatch = "notification_batch"
)

// Entry is append-only.
type Entry struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	Details    json.RawMessage
	UserID     *string
	CreatedAt  time.Time
}

type Filter struct {
	EntityType *string
	Action     *string
	Limit      int
}
