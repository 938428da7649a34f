package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-engine/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-engine/internal/auth"
	"github.com/frahmantamala/attendance-engine/internal/biometric"
	"github.com/frahmantamala/attendance-engine/internal/core/events"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	identityPostgres "github.com/frahmantamala/attendance-engine/internal/identity/postgres"
	"github.com/frahmantamala/attendance-engine/internal/leave"
	leavePostgres "github.com/frahmantamala/attendance-engine/internal/leave/postgres"
	"github.com/frahmantamala/attendance-engine/internal/performance"
	"github.com/frahmantamala/attendance-engine/internal/publisher"
	awsPkg "github.com/frahmantamala/attendance-engine/pkg/aws"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	Gorm        *gorm.DB
	Logger      *slog.Logger
	Location    *time.Location
	Bus         *events.EventBus
	Verifier    *auth.TokenVerifier
	Identity    *identity.Service
	Attendance  *attendance.Service
	Performance *performance.Service
}

func (d *Dependencies) Close() {
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	loc, err := config.Attendance.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	directory := identityPostgres.NewEmployeeDirectory(gormDB)
	scan := biometric.WithParallelScan(config.Biometric.ParallelScanThreshold, config.Biometric.ScanWorkers)
	identitySvc := identity.NewService(
		directory,
		biometric.NewFaceMatcher(scan),
		biometric.NewFingerprintMatcher(scan),
		identity.Config{
			FaceMatchThreshold:        config.Biometric.FaceMatchThreshold,
			FingerprintMatchThreshold: config.Biometric.FingerprintMatchThreshold,
			MinTemplateLength:         config.Biometric.MinTemplateLength,
		},
		lg,
	)

	bus := events.NewEventBus(lg)
	if config.Events.Enabled {
		client, err := newSQSClient(ctx, config.Events, lg)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		publisher.NewForwarder(client, config.Events.QueueURL, lg).Register(bus)
	}

	attendanceRepo := attendancePostgres.NewAttendanceRepository(gormDB)
	attendanceSvc := attendance.NewService(
		attendanceRepo,
		identitySvc,
		newLeaveChecker(config.Leave, gormDB, lg),
		bus,
		lg,
		attendance.WithLocation(loc),
		attendance.WithRules(attendance.Rules{
			CompletionRatio:       config.Attendance.CompletionRatio,
			OvertimeStatusMinutes: config.Attendance.OvertimeThreshold(),
		}),
	)

	performanceSvc := performance.NewService(
		attendanceRepo,
		directory,
		performance.Config{
			Concurrency: config.Leaderboard.Concurrency,
			CohortSize:  config.Leaderboard.CohortSize,
		},
		lg,
		performance.WithLocation(loc),
	)

	return &Dependencies{
		Config:      config,
		DB:          db,
		Gorm:        gormDB,
		Logger:      lg,
		Location:    loc,
		Bus:         bus,
		Verifier:    auth.NewTokenVerifier(config.Security.AdminTokenSecret),
		Identity:    identitySvc,
		Attendance:  attendanceSvc,
		Performance: performanceSvc,
	}, nil
}

// initDB opens a traced pgx connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	sqlDB, err := otelsql.Open(driver, cfg.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open traced db connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqlx.NewDb(sqlDB, driver), nil
}

// initGorm shares the traced pool with the repositories.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

// newLeaveChecker picks where approved leave is read from. The HTTP source
// goes through a circuit breaker.
func newLeaveChecker(cfg internal.LeaveConfig, db *gorm.DB, lg *slog.Logger) leave.Checker {
	if cfg.Source == internal.LeaveSourceHTTP {
		lg.Info("reading leave from remote service", "base_url", cfg.BaseURL)
		return leave.NewHTTPClient(cfg.BaseURL, cfg.Timeout, lg)
	}
	return leavePostgres.NewLeaveRepository(db)
}

func newSQSClient(ctx context.Context, cfg internal.EventsConfig, lg *slog.Logger) (*sqs.Client, error) {
	awsCfg, err := awsPkg.NewAWSConfig(ctx, cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return sqs.NewFromConfig(awsCfg), nil
}
