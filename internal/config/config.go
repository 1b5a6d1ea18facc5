package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Attendance   AttendanceConfig
	JWT          JWTConfig
	GOSI         GOSIConfig
	Messaging    MessagingConfig
	Notification NotificationConfig
	Report       ReportConfig
	Storage      StorageConfig
	Payroll      PayrollConfig
	ServiceBus   ServiceBusConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	BaseURL            string
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// AttendanceConfig selects where attendance facts are read from. "primary"
// uses the payroll database itself.
type AttendanceConfig struct {
	Source        string
	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	MySQLTable    string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

type GOSIConfig struct {
	CitizenRate            decimal.Decimal
	NonCitizenHazardRate   decimal.Decimal
	WageCap                decimal.Decimal
	DeductNonCitizenHazard bool
}

type MessagingConfig struct {
	BaseURL             string
	AccountID           string
	AuthToken           string
	Sender              string
	SalaryTemplateID    string
	DeductionTemplateID string
	Timeout             time.Duration
}

// Enabled reports whether the adapter has everything it needs to send.
func (m MessagingConfig) Enabled() bool {
	return m.BaseURL != "" && m.AccountID != "" && m.AuthToken != "" && m.Sender != ""
}

type NotificationConfig struct {
	CountryPrefix    string
	ShareLinkBaseURL string
}

type ReportConfig struct {
	FontDir       string
	FontRegular   string
	FontBold      string
	CompanyName   string
	CompanyNameEn string
	CompanyCR     string
	ColumnPadding float64
}

type StorageConfig struct {
	Root    string
	BaseURL string
}

type PayrollConfig struct {
	RequiredDaysForBonus int
	AutoRunDay           int
}

type ServiceBusConfig struct {
	ConnectionString  string
	NotificationQueue string
}

func (s ServiceBusConfig) Enabled() bool {
	return s.ConnectionString != "" && s.NotificationQueue != ""
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var p parser

	config := &Config{}

	config.App = AppConfig{
		Port:               p.int("APP_PORT", 8080),
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		BaseURL:            getEnv("APP_BASE_URL", ""),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       p.int("DB_PORT", 5432),
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "payroll"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./payroll.db"),
	}

	config.Attendance = AttendanceConfig{
		Source:        strings.ToLower(getEnv("ATTENDANCE_SOURCE", "primary")),
		MySQLHost:     getEnv("ATTENDANCE_MYSQL_HOST", ""),
		MySQLPort:     getEnv("ATTENDANCE_MYSQL_PORT", "3306"),
		MySQLUser:     getEnv("ATTENDANCE_MYSQL_USER", ""),
		MySQLPassword: getEnv("ATTENDANCE_MYSQL_PASSWORD", ""),
		MySQLDatabase: getEnv("ATTENDANCE_MYSQL_DB", ""),
		MySQLTable:    getEnv("ATTENDANCE_MYSQL_TABLE", "attendance_records"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: p.duration("JWT_ACCESS_EXPIRATION_TIME", time.Hour),
	}

	config.GOSI = GOSIConfig{
		CitizenRate:            p.decimal("GOSI_CITIZEN_RATE", "0.10"),
		NonCitizenHazardRate:   p.decimal("GOSI_NON_CITIZEN_HAZARD_RATE", "0"),
		WageCap:                p.decimal("GOSI_WAGE_CAP", "45000"),
		DeductNonCitizenHazard: p.bool("GOSI_DEDUCT_NON_CITIZEN_HAZARD", false),
	}

	config.Messaging = MessagingConfig{
		BaseURL:             getEnv("MESSAGING_BASE_URL", ""),
		AccountID:           getEnv("MESSAGING_ACCOUNT_ID", ""),
		AuthToken:           getEnv("MESSAGING_AUTH_TOKEN", ""),
		Sender:              getEnv("MESSAGING_SENDER", ""),
		SalaryTemplateID:    getEnv("MESSAGING_SALARY_TEMPLATE_ID", ""),
		DeductionTemplateID: getEnv("MESSAGING_DEDUCTION_TEMPLATE_ID", ""),
		Timeout:             p.duration("MESSAGING_TIMEOUT", 15*time.Second),
	}

	config.Notification = NotificationConfig{
		CountryPrefix:    getEnv("PHONE_COUNTRY_PREFIX", "+966"),
		ShareLinkBaseURL: getEnv("SHARE_LINK_BASE_URL", "https://wa.me/"),
	}

	config.Report = ReportConfig{
		FontDir:       getEnv("FONT_DIR", "./assets/fonts"),
		FontRegular:   getEnv("FONT_REGULAR", "Amiri-Regular.ttf"),
		FontBold:      getEnv("FONT_BOLD", "Amiri-Bold.ttf"),
		CompanyName:   getEnv("COMPANY_NAME", ""),
		CompanyNameEn: getEnv("COMPANY_NAME_EN", ""),
		CompanyCR:     getEnv("COMPANY_CR_NUMBER", ""),
		ColumnPadding: p.float("REPORT_COLUMN_PADDING", 2),
	}

	config.Storage = StorageConfig{
		Root:    getEnv("STORAGE_ROOT", "./storage"),
		BaseURL: getEnv("STORAGE_BASE_URL", ""),
	}

	config.Payroll = PayrollConfig{
		RequiredDaysForBonus: p.int("PAYROLL_REQUIRED_DAYS_FOR_BONUS", 30),
		AutoRunDay:           p.int("PAYROLL_AUTO_RUN_DAY", 0),
	}

	config.ServiceBus = ServiceBusConfig{
		ConnectionString:  getEnv("SERVICEBUS_CONNECTION_STRING", ""),
		NotificationQueue: getEnv("SERVICEBUS_NOTIFICATION_QUEUE", ""),
	}

	if err := p.err(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}

	switch c.Attendance.Source {
	case "primary":
	case "mysql":
		if c.Attendance.MySQLHost == "" || c.Attendance.MySQLDatabase == "" {
			return fmt.Errorf("ATTENDANCE_MYSQL_HOST and ATTENDANCE_MYSQL_DB are required when ATTENDANCE_SOURCE=mysql")
		}
	default:
		return fmt.Errorf("ATTENDANCE_SOURCE must be primary or mysql, got %q", c.Attendance.Source)
	}

	if c.GOSI.CitizenRate.IsNegative() || c.GOSI.CitizenRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("GOSI_CITIZEN_RATE must be between 0 and 1")
	}
	if c.GOSI.NonCitizenHazardRate.IsNegative() || c.GOSI.NonCitizenHazardRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("GOSI_NON_CITIZEN_HAZARD_RATE must be between 0 and 1")
	}
	if !c.GOSI.WageCap.IsPositive() {
		return fmt.Errorf("GOSI_WAGE_CAP must be positive")
	}

	if c.Payroll.RequiredDaysForBonus < 1 || c.Payroll.RequiredDaysForBonus > 31 {
		return fmt.Errorf("PAYROLL_REQUIRED_DAYS_FOR_BONUS must be between 1 and 31")
	}
	if c.Payroll.AutoRunDay < 0 || c.Payroll.AutoRunDay > 28 {
		return fmt.Errorf("PAYROLL_AUTO_RUN_DAY must be between 0 and 28")
	}
	if c.Report.ColumnPadding < 0 {
		return fmt.Errorf("REPORT_COLUMN_PADDING must not be negative")
	}

	if !strings.HasPrefix(c.Notification.CountryPrefix, "+") {
		return fmt.Errorf("PHONE_COUNTRY_PREFIX must start with +")
	}
	if _, err := url.ParseRequestURI(c.Notification.ShareLinkBaseURL); err != nil {
		return fmt.Errorf("SHARE_LINK_BASE_URL is invalid: %w", err)
	}

	if c.Messaging.Enabled() && (c.Messaging.SalaryTemplateID == "" || c.Messaging.DeductionTemplateID == "") {
		return fmt.Errorf("MESSAGING_SALARY_TEMPLATE_ID and MESSAGING_DEDUCTION_TEMPLATE_ID are required when messaging is configured")
	}
	if (c.ServiceBus.ConnectionString == "") != (c.ServiceBus.NotificationQueue == "") {
		return fmt.Errorf("SERVICEBUS_CONNECTION_STRING and SERVICEBUS_NOTIFICATION_QUEUE must be set together")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// parser collects conversion errors so every bad key is reported at once.
type parser struct {
	errs []error
}

func (p *parser) int(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) bool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) decimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return decimal.RequireFromString(fallback)
	}
	return v
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}
