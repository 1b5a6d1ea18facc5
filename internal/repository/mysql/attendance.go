// Package mysql reads attendance facts from an external MySQL attendance
// database. It never writes.
package mysql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	myConfig "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const dateLayout = "2006-01-02"

// Config locates the attendance database.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

func (c Config) DSN() string {
	port := c.Port
	if port == "" {
		port = "3306"
	}
	cfg := myConfig.Config{
		User:   c.User,
		Passwd: c.Password,
		Net:    "tcp",
		Addr:   c.Host + ":" + port,
		DBName: c.Database,
		Params: map[string]string{
			"charset": "utf8mb4",
		},
		AllowNativePasswords: true,
		ParseTime:            true,
		Loc:                  time.UTC,
	}
	return cfg.FormatDSN()
}

// Open connects with gorm and sizes the pool for read-only batch use.
func Open(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect attendance database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// DefaultStatusMap accepts the engine's own vocabulary plus single-letter
// device codes.
func DefaultStatusMap() map[string]attendance.Status {
	return map[string]attendance.Status{
		"present": attendance.StatusPresent,
		"absent":  attendance.StatusAbsent,
		"leave":   attendance.StatusLeave,
		"sick":    attendance.StatusSick,
		"p":       attendance.StatusPresent,
		"a":       attendance.StatusAbsent,
		"l":       attendance.StatusLeave,
		"s":       attendance.StatusSick,
	}
}

type attendanceRow struct {
	ID         string    `gorm:"column:id"`
	EmployeeID string    `gorm:"column:employee_id"`
	Date       time.Time `gorm:"column:date"`
	Status     string    `gorm:"column:status"`
}

type attendanceRepository struct {
	db        *gorm.DB
	table     string
	statusMap map[string]attendance.Status
}

// NewAttendanceRepository reads from table (default attendance_records).
// Status values are matched case-insensitively against statusMap; rows with
// unknown statuses are skipped and logged.
func NewAttendanceRepository(db *gorm.DB, table string, statusMap map[string]attendance.Status) attendance.AttendanceRepository {
	if table == "" {
		table = "attendance_records"
	}
	if statusMap == nil {
		statusMap = DefaultStatusMap()
	}
	return &attendanceRepository{db: db, table: table, statusMap: statusMap}
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	var rows []attendanceRow
	err := r.db.WithContext(ctx).
		Table(r.table).
		Select("id", "employee_id", "date", "status").
		Where("employee_id = ? AND date BETWEEN ? AND ?", employeeID, from.Format(dateLayout), to.Format(dateLayout)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for employee %s: %w", employeeID, err)
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		status, ok := r.statusMap[strings.ToLower(strings.TrimSpace(row.Status))]
		if !ok {
			slog.WarnContext(ctx, "skipping attendance row with unknown status",
				"employee_id", employeeID, "date", row.Date.Format(dateLayout), "status", row.Status)
			continue
		}
		records = append(records, attendance.Record{
			ID:         row.ID,
			EmployeeID: row.EmployeeID,
			Date:       row.Date,
			Status:     status,
		})
	}
	return records, nil
}
