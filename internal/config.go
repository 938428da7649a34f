package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Attendance    AttendanceConfig    `mapstructure:"attendance"`
	Biometric     BiometricConfig     `mapstructure:"biometric"`
	Leaderboard   LeaderboardConfig   `mapstructure:"leaderboard"`
	Leave         LeaveConfig         `mapstructure:"leave"`
	Events        EventsConfig        `mapstructure:"events"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// SecurityConfig only covers verifying admin tokens; issuing them is
// handled by a separate identity provider.
type SecurityConfig struct {
	AdminTokenSecret string `mapstructure:"admin_token_secret"`
	AdminRole        string `mapstructure:"admin_role"`
	BCryptCost       int    `mapstructure:"bcrypt_cost"`
}

type ObservabilityConfig struct {
	Tracing TracingConfig `mapstructure:"tracing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name"`
	Exporter     string  `mapstructure:"exporter"`
	Endpoint     string  `mapstructure:"endpoint"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AttendanceConfig holds the tunable business constants of the clock-in/out
// lifecycle.
type AttendanceConfig struct {
	Timezone              string  `mapstructure:"timezone"`
	CompletionRatio       float64 `mapstructure:"completion_ratio"`
	// OvertimeStatusMinutes is a pointer so an explicit 0 survives defaults.
	OvertimeStatusMinutes *int    `mapstructure:"overtime_status_minutes"`
}

// OvertimeThreshold returns the overtime minutes above which a clock-out is
// marked OVERTIME.
func (c *AttendanceConfig) OvertimeThreshold() int {
	if c.OvertimeStatusMinutes == nil {
		return defaultOvertimeStatusMinutes
	}
	return *c.OvertimeStatusMinutes
}

type BiometricConfig struct {
	FaceMatchThreshold        float64 `mapstructure:"face_match_threshold"`
	FingerprintMatchThreshold float64 `mapstructure:"fingerprint_match_threshold"`
	MinTemplateLength         int     `mapstructure:"min_template_length"`
	ParallelScanThreshold     int     `mapstructure:"parallel_scan_threshold"`
	ScanWorkers               int     `mapstructure:"scan_workers"`
}

type LeaderboardConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	CohortSize  int `mapstructure:"cohort_size"`
}

type LeaveConfig struct {
	Source  string        `mapstructure:"source"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	QueueURL string `mapstructure:"queue_url"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

const defaultOvertimeStatusMinutes = 30

const (
	LeaveSourceDatabase = "database"
	LeaveSourceHTTP     = "http"
)

// ----------------- DEFAULTS -----------------

// ApplyDefaults fills zero values with the values observed in production.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Security.AdminRole == "" {
		c.Security.AdminRole = "ADMIN"
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
	if c.Observability.Tracing.ServiceName == "" {
		c.Observability.Tracing.ServiceName = "attendance-engine"
	}
	if c.Observability.Tracing.Exporter == "" {
		c.Observability.Tracing.Exporter = "stdout"
	}
	if c.Attendance.Timezone == "" {
		c.Attendance.Timezone = "Local"
	}
	if c.Attendance.CompletionRatio == 0 {
		c.Attendance.CompletionRatio = 0.9
	}
	if c.Attendance.OvertimeStatusMinutes == nil {
		minutes := defaultOvertimeStatusMinutes
		c.Attendance.OvertimeStatusMinutes = &minutes
	}
	if c.Biometric.FaceMatchThreshold == 0 {
		c.Biometric.FaceMatchThreshold = 0.6
	}
	if c.Biometric.FingerprintMatchThreshold == 0 {
		c.Biometric.FingerprintMatchThreshold = 65
	}
	if c.Biometric.MinTemplateLength == 0 {
		c.Biometric.MinTemplateLength = 100
	}
	if c.Biometric.ParallelScanThreshold == 0 {
		c.Biometric.ParallelScanThreshold = 512
	}
	if c.Biometric.ScanWorkers == 0 {
		c.Biometric.ScanWorkers = 4
	}
	if c.Leaderboard.Concurrency == 0 {
		c.Leaderboard.Concurrency = 8
	}
	if c.Leaderboard.CohortSize == 0 {
		c.Leaderboard.CohortSize = 10
	}
	if c.Leave.Source == "" {
		c.Leave.Source = LeaveSourceDatabase
	}
	if c.Leave.Timeout == 0 {
		c.Leave.Timeout = 10 * time.Second
	}
}

// Location resolves the configured timezone used to bound calendar days.
func (c *AttendanceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds the configuration for container deployments where
// no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			AdminTokenSecret: getEnv("ADMIN_TOKEN_SECRET", ""),
			AdminRole:        getEnv("ADMIN_ROLE", "ADMIN"),
			BCryptCost:       getEnvAsInt("BCRYPT_COST", 10),
		},
		Observability: ObservabilityConfig{
			Tracing: TracingConfig{
				Enabled:      getEnvAsBool("TRACING_ENABLED", false),
				ServiceName:  getEnv("TRACING_SERVICE_NAME", "attendance-engine"),
				Exporter:     getEnv("TRACING_EXPORTER", "otlp"),
				Endpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317"),
				SamplingRate: getEnvAsFloat("TRACING_SAMPLING_RATE", 1),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Attendance: AttendanceConfig{
			Timezone:              getEnv("ATTENDANCE_TIMEZONE", "Local"),
			CompletionRatio:       getEnvAsFloat("ATTENDANCE_COMPLETION_RATIO", 0.9),
			OvertimeStatusMinutes: intPtr(getEnvAsInt("ATTENDANCE_OVERTIME_STATUS_MINUTES", defaultOvertimeStatusMinutes)),
		},
		Biometric: BiometricConfig{
			FaceMatchThreshold:        getEnvAsFloat("FACE_MATCH_THRESHOLD", 0.6),
			FingerprintMatchThreshold: getEnvAsFloat("FINGERPRINT_MATCH_THRESHOLD", 65),
			MinTemplateLength:         getEnvAsInt("FINGERPRINT_MIN_TEMPLATE_LENGTH", 100),
			ParallelScanThreshold:     getEnvAsInt("BIOMETRIC_PARALLEL_SCAN_THRESHOLD", 512),
			ScanWorkers:               getEnvAsInt("BIOMETRIC_SCAN_WORKERS", 4),
		},
		Leaderboard: LeaderboardConfig{
			Concurrency: getEnvAsInt("LEADERBOARD_CONCURRENCY", 8),
			CohortSize:  getEnvAsInt("LEADERBOARD_COHORT_SIZE", 10),
		},
		Leave: LeaveConfig{
			Source:  getEnv("LEAVE_SOURCE", LeaveSourceDatabase),
			BaseURL: getEnv("LEAVE_SERVICE_URL", ""),
			Timeout: getEnvAsDuration("LEAVE_SERVICE_TIMEOUT", 10*time.Second),
		},
		Events: EventsConfig{
			Enabled:  getEnvAsBool("EVENTS_SQS_ENABLED", false),
			QueueURL: getEnv("EVENTS_SQS_QUEUE_URL", ""),
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Endpoint: getEnv("AWS_ENDPOINT", ""),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func intPtr(v int) *int { return &v }

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Attendance.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("attendance config: %v", err))
	}

	if err := c.Biometric.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("biometric config: %v", err))
	}

	if err := c.Leave.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("leave config: %v", err))
	}

	if err := c.Events.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("events config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.AdminTokenSecret) < 32 {
		return errors.New("admin_token_secret must be at least 32 characters")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return errors.New("bcrypt_cost must be between 4 and 31")
	}
	return nil
}

func (c *AttendanceConfig) Validate() error {
	if c.CompletionRatio <= 0 || c.CompletionRatio > 1 {
		return errors.New("completion_ratio must be in (0, 1]")
	}
	if c.OvertimeThreshold() < 0 {
		return errors.New("overtime_status_minutes cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

func (c *BiometricConfig) Validate() error {
	if c.FaceMatchThreshold < -1 || c.FaceMatchThreshold > 1 {
		return errors.New("face_match_threshold must be within [-1, 1]")
	}
	if c.FingerprintMatchThreshold < 0 || c.FingerprintMatchThreshold > 100 {
		return errors.New("fingerprint_match_threshold must be within [0, 100]")
	}
	if c.MinTemplateLength < 0 {
		return errors.New("min_template_length cannot be negative")
	}
	return nil
}

func (c *LeaveConfig) Validate() error {
	switch c.Source {
	case LeaveSourceDatabase:
		return nil
	case LeaveSourceHTTP:
		if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
			return fmt.Errorf("base_url is required for http source: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown leave source %q", c.Source)
	}
}

func (c *EventsConfig) Validate() error {
	if c.Enabled && c.QueueURL == "" {
		return errors.New("queue_url is required when events are enabled")
	}
	return nil
}
