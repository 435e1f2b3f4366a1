package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB bundles the pgx pool with the GORM handle built on top of it.
type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
	Gorm *gorm.DB
}

// Connect opens the pgx pool, verifies it and wraps it for GORM.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		// close the pool if ping fails to avoid resource leak
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gdb, err := OpenGorm(sqlDB, cfg)
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, err
	}

	logger.Info("Connected to the database successfully", "max_conns", poolCfg.MaxConns)
	return &DB{Pool: pool, SQL: sqlDB, Gorm: gdb}, nil
}

// OpenGorm wraps an open connection; SQL logging is verbose in development.
func OpenGorm(sqlDB *sql.DB, cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() && cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm DB: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the schema.
func Migrate(gdb *gorm.DB, logger *slog.Logger) error {
	if err := gdb.SetupJoinTable(&models.Title{}, "Genres", &models.GenreTitle{}); err != nil {
		return fmt.Errorf("failed to set up genre join table: %w", err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.GenreTitle{},
		&models.Review{},
		&models.Comment{},
	); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("Database migrations applied successfully")
	return nil
}

func (db *DB) Close() {
	if db == nil {
		return
	}
	_ = db.SQL.Close()
	db.Pool.Close()
}
