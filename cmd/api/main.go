// Package main реализует точку входа HTTP API NeuroLearn.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httpServer "neurolearn/internal/api/adapters/http"
	"neurolearn/internal/api/adapters/http/middleware"
	"neurolearn/internal/api/adapters/postgres"
	redisadapter "neurolearn/internal/api/adapters/redis"
	"neurolearn/internal/api/adapters/services"
	"neurolearn/internal/api/adapters/storage"
	"neurolearn/internal/api/app"
	"neurolearn/internal/api/config"
	"neurolearn/internal/api/db"
	"neurolearn/pkg/db/redis"
	"neurolearn/pkg/logger"
	"neurolearn/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "API_LOGGER_MODE"
	EnvLoggerLevel = "API_LOGGER_LEVEL"
	EnvConfigPath  = "API_CONFIG_PATH"

	defaultConfigPath = "deploy/.env"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrInitServices         = "failed to initialize services"
	ErrInitStorage          = "failed to initialize page storage"
	ErrInitMetrics          = "failed to initialize metrics"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrCloseStores          = "failed to close storage connections"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "api service started"
	LogServiceShutdownDone = "api service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing Redis connection"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitRepo            = "initializing repositories"
	LogInitCache           = "initializing OAuth state store"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		configPath := os.Getenv(EnvConfigPath)
		if configPath == "" {
			configPath = defaultConfigPath
		}

		cfg, err := config.Load(ctx, configPath)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		database, err := db.New(ctx, &cfg.Postgres)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitCache)
		redisClient, err := redis.NewClient(ctx, redis.NewConfig(&cfg.Redis))
		if err != nil {
			log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
			database.Close(ctx)
			exitCode = 1
			return
		}

		opened := stores{redis: redisClient, db: database}

		log.Info(ctx, LogInitRepo)
		repoFactory := postgres.NewRepositoryFactory(database.Pool())
		stateStore := redisadapter.NewStateStore(redisClient)

		log.Info(ctx, LogInitServices)
		serviceFactory, err := services.NewServiceFactory(&cfg.JWT, &cfg.OAuth)
		if err != nil {
			log.Error(ctx, ErrInitServices, zap.Error(err))
			if closeErr := opened.close(ctx); closeErr != nil {
				log.Warn(ctx, ErrCloseStores, zap.Error(closeErr))
			}
			exitCode = 1
			return
		}

		pageStorage, err := storage.NewLocalImageStorage(cfg.Storage.UploadDir, cfg.Storage.GetPublicPath())
		if err != nil {
			log.Error(ctx, ErrInitStorage, zap.Error(err))
			if closeErr := opened.close(ctx); closeErr != nil {
				log.Warn(ctx, ErrCloseStores, zap.Error(closeErr))
			}
			exitCode = 1
			return
		}
		rasterizer := storage.NewPdftoppmRasterizer(cfg.Storage.PdftoppmPath, cfg.Storage.RenderDPI)

		log.Info(ctx, LogInitUseCases)
		authUseCase := app.NewAuthUseCase(
			repoFactory.UserRepository(),
			serviceFactory.PasswordService(),
			serviceFactory.TokenService(),
		)
		oauthUseCase := app.NewOAuthUseCase(stateStore, serviceFactory.OAuthService(), authUseCase, cfg.OAuth.GetStateTTL())
		userUseCase := app.NewUserUseCase(repoFactory.UserRepository())
		noteUseCase := app.NewNoteUseCase(repoFactory.NoteRepository(), rasterizer, pageStorage)

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := middleware.NewMetrics(registry)
		if err != nil {
			log.Error(ctx, ErrInitMetrics, zap.Error(err))
			if closeErr := opened.close(ctx); closeErr != nil {
				log.Warn(ctx, ErrCloseStores, zap.Error(closeErr))
			}
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := httpServer.NewApp(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			BodyLimit:    cfg.HTTP.GetBodyLimit(),
		})

		httpServer.SetupRouter(fiberApp, httpServer.Dependencies{
			Auth:        authUseCase,
			OAuth:       oauthUseCase,
			Users:       userUseCase,
			Notes:       noteUseCase,
			Logger:      log,
			Metrics:     metrics,
			Gatherer:    registry,
			ServiceName: config.ServiceName,
			FrontendURL: cfg.OAuth.GetFrontendURL(),
			UploadDir:   pageStorage.Dir(),
			PublicPath:  cfg.Storage.GetPublicPath(),
			Readiness: map[string]httpServer.Check{
				"postgres": database.Ping,
				"redis":    redisClient.Ping,
			},
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		// HTTP сервер останавливается первым, чтобы запросы не застали закрытые пулы.
		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				httpErr := fiberApp.ShutdownWithContext(ctx)

				return errors.Join(httpErr, opened.close(ctx))
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// stores закрывает Redis и Postgres в обратном порядке открытия.
type stores struct {
	redis interface{ Close(ctx context.Context) error }
	db    interface{ Close(ctx context.Context) }
}

func (s stores) close(ctx context.Context) error {
	log := logger.Log(ctx)

	log.Info(ctx, LogClosingRedis)
	err := s.redis.Close(ctx)

	log.Info(ctx, LogClosingDB)
	s.db.Close(ctx)

	return err
}
