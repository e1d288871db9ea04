package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/core/datamodel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Handles bundles the sqlx pool (health checks, seeding) with the gorm session built on the same pool.
type Handles struct {
	SQL  *sqlx.DB
	Gorm *gorm.DB
}

func (h *Handles) Close() error {
	return h.SQL.Close()
}

// Open connects according to cfg.Driver. The sqlite driver also auto-migrates the schema.
func Open(cfg internal.DatabaseConfig, lg *slog.Logger) (*Handles, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return openSQLite(cfg, lg)
	case DriverPostgres, "":
		return openPostgres(cfg, lg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(cfg internal.DatabaseConfig, lg *slog.Logger) (*Handles, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.ConnMaxLifetime > 0 {
		dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), gormConfig(lg))
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return &Handles{SQL: dbConn, Gorm: gdb}, nil
}

func openSQLite(cfg internal.DatabaseConfig, lg *slog.Logger) (*Handles, error) {
	gdb, err := gorm.Open(sqlite.Open(cfg.Source), gormConfig(lg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; one connection also keeps :memory: databases alive
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(datamodel.Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return &Handles{SQL: sqlx.NewDb(sqlDB, "sqlite3"), Gorm: gdb}, nil
}

// OpenInMemory returns a migrated in-memory sqlite database. Used by tests.
func OpenInMemory() (*Handles, error) {
	return openSQLite(internal.DatabaseConfig{Source: ":memory:"}, nil)
}

func gormConfig(lg *slog.Logger) *gorm.Config {
	cfg := &gorm.Config{TranslateError: true}
	if lg == nil {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
		return cfg
	}
	cfg.Logger = gormlogger.New(
		slog.NewLogLogger(lg.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	return cfg
}
