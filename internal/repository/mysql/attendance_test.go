package mysql

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newTestDB runs the MySQL dialector over an in-memory sqlite connection so
// the generated SQL is exercised without a MySQL server.
func newTestDB(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = sqlDB.Exec(`
		CREATE TABLE device_attendance (
			id TEXT PRIMARY KEY,
			employee_id TEXT NOT NULL,
			date DATE NOT NULL,
			status TEXT NOT NULL
		)`)
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	return db, sqlDB
}

func TestAttendanceRepository_ListByEmployee(t *testing.T) {
	t.Parallel()

	// Arrange
	db, raw := newTestDB(t)
	rows := [][4]string{
		{"1", "emp-1", "2024-05-31", "P"},
		{"2", "emp-1", "2024-06-01", "P"},
		{"3", "emp-1", "2024-06-02", "absent"},
		{"4", "emp-1", "2024-06-03", "L"},
		{"5", "emp-1", "2024-06-04", "holiday"},
		{"6", "emp-1", "2024-06-30", " s "},
		{"7", "emp-2", "2024-06-05", "P"},
		{"8", "emp-1", "2024-07-01", "A"},
	}
	for _, r := range rows {
		_, err := raw.Exec(`INSERT INTO device_attendance (id, employee_id, date, status) VALUES (?, ?, ?, ?)`, r[0], r[1], r[2], r[3])
		require.NoError(t, err)
	}
	repo := NewAttendanceRepository(db, "device_attendance", nil)

	// Act
	got, err := repo.ListByEmployee(context.Background(), "emp-1",
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))

	// Assert
	require.NoError(t, err)
	var statuses []attendance.Status
	for _, r := range got {
		statuses = append(statuses, r.Status)
		assert.Equal(t, "emp-1", r.EmployeeID)
	}
	assert.Equal(t, []attendance.Status{
		attendance.StatusPresent,
		attendance.StatusAbsent,
		attendance.StatusLeave,
		attendance.StatusSick,
	}, statuses)
	assert.Equal(t, 30, got[3].Date.Day())
}

func TestAttendanceRepository_QueryError(t *testing.T) {
	t.Parallel()
	db, _ := newTestDB(t)
	repo := NewAttendanceRepository(db, "missing_table", nil)

	_, err := repo.ListByEmployee(context.Background(), "emp-1", time.Now(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "emp-1")
}

func TestConfig_DSN(t *testing.T) {
	t.Parallel()

	dsn := Config{Host: "db.internal", User: "reader", Password: "secret", Database: "attendance"}.DSN()

	assert.True(t, strings.HasPrefix(dsn, "reader:secret@tcp(db.internal:3306)/attendance?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
