// Package db поднимает базу данных сервиса: миграции и пул соединений.
package db

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"neurolearn/internal/api/config"
	"neurolearn/pkg/db/postgres"
	"neurolearn/pkg/logger"
	"neurolearn/pkg/retry"
)

// Константы для сообщений логгера.
const (
	LogDBInitializing    = "initializing database"
	LogDBInitialized     = "database initialized successfully"
	LogMigrationStarting = "starting database migrations"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations = "failed to apply database migrations"
	ErrDBConnection = "failed to connect to database"
	ErrGetPath      = "failed to get path"
)

// DB представляет соединение с базой данных сервиса.
type DB struct {
	database *postgres.Database
}

// Option настраивает инициализацию базы.
type Option func(*retry.Config)

// WithRetryConfig заменяет параметры повторов подключения.
func WithRetryConfig(rc retry.Config) Option {
	return func(c *retry.Config) {
		*c = rc
	}
}

// New применяет миграции и открывает пул. Обе операции повторяются
// с экспоненциальной задержкой, пока база не станет доступна.
func New(ctx context.Context, cfg *config.PostgresConfig, opts ...Option) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	migrationsPath, err := migrationsURL(cfg.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", ErrDBMigrations, ErrGetPath, err)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.ConnectTries
	for _, opt := range opts {
		opt(&retryCfg)
	}
	r := retry.New("postgres-bootstrap", retryCfg)

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsPath))
	if err := r.Execute(ctx, func(ctx context.Context) error {
		return postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsPath)
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	var database *postgres.Database
	if err := r.Execute(ctx, func(ctx context.Context) error {
		var connErr error
		database, connErr = postgres.New(ctx, cfg.GetDSN(), cfg.MinConn, cfg.MaxConn)
		return connErr
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{
		database: database,
	}, nil
}

func migrationsURL(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return "file://" + dir, nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return "file://" + absPath, nil
}

// Close закрывает соединение с базой данных.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений с базой данных.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	return db.database.Ping(ctx)
}
