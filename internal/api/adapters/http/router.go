// Package http содержит компоненты для HTTP сервера.
package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"neurolearn/internal/api/adapters/http/auth"
	"neurolearn/internal/api/adapters/http/middleware"
	"neurolearn/internal/api/adapters/http/notes"
	"neurolearn/internal/api/adapters/http/response"
	"neurolearn/internal/api/adapters/http/user"
	"neurolearn/internal/api/ports/api"
	"neurolearn/pkg/logger"
)

const (
	welcomeMessage = "Welcome to NeuroLearn API"
	detailNotFound = "Not Found"

	LogReadinessFailed = "readiness check failed"
)

// Check - проверка готовности зависимости.
type Check func(ctx context.Context) error

// Dependencies - все, что нужно маршрутизатору.
type Dependencies struct {
	Auth  api.AuthUseCase
	OAuth api.OAuthUseCase
	Users api.UserUseCase
	Notes api.NoteUseCase

	Logger      *logger.Logger
	Metrics     *middleware.Metrics
	Gatherer    prometheus.Gatherer
	ServiceName string
	FrontendURL string

	// UploadDir раздается по PublicPath, если оба заданы.
	UploadDir  string
	PublicPath string

	Readiness map[string]Check
}

// NewApp создает fiber приложение с обработчиком ошибок в формате {"detail": ...}.
func NewApp(cfg fiber.Config) *fiber.App {
	cfg.ErrorHandler = ErrorHandler
	return fiber.New(cfg)
}

// ErrorHandler отвечает на ошибки, не обработанные маршрутами.
func ErrorHandler(ctx fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return response.Detail(ctx, fiberErr.Code, fiberErr.Message)
	}
	return response.Detail(ctx, fiber.StatusInternalServerError, response.DetailInternalError)
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	authHandler := auth.NewHandler(deps.Auth, deps.OAuth, deps.FrontendURL)
	userHandler := user.NewHandler(deps.Users)
	notesHandler := notes.NewHandler(deps.Notes)
	requireUser := middleware.NewAuthMiddleware(deps.Auth)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestContextMiddleware(deps.Logger))
	app.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Handler())
	}
	app.Use(cors.New())

	app.Get("/", func(ctx fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"message": welcomeMessage})
	})
	app.Get("/health", func(ctx fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "active", "service": deps.ServiceName})
	})
	app.Get("/health/ready", readinessHandler(deps.Readiness))
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	if deps.UploadDir != "" && deps.PublicPath != "" {
		app.Get(deps.PublicPath+"*", static.New(deps.UploadDir))
	}

	// Auth routes.
	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/login/google", authHandler.GoogleLogin)
	authRoutes.Get("/callback", authHandler.GoogleCallback)
	authRoutes.Get("/me", authHandler.Me, requireUser)

	// Защищенные маршруты.
	userRoutes := app.Group("/user", requireUser)
	userRoutes.Get("/me", userHandler.GetMe)
	userRoutes.Put("/me", userHandler.UpdateMe)

	noteRoutes := app.Group("/notes", requireUser)
	noteRoutes.Get("", notesHandler.List)
	noteRoutes.Post("", notesHandler.Create)
	noteRoutes.Patch("/pages/:page_id", notesHandler.UpdateOverlay)
	noteRoutes.Get("/:id", notesHandler.Get)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(ctx fiber.Ctx) error {
		return response.Detail(ctx, fiber.StatusNotFound, detailNotFound)
	})
}

func readinessHandler(checks map[string]Check) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := middleware.RequestContext(ctx)
		result := fiber.Map{}
		status := fiber.StatusOK

		for name, check := range checks {
			if err := check(requestCtx); err != nil {
				logger.Log(requestCtx).Warn(requestCtx, LogReadinessFailed, zap.String("dependency", name), zap.Error(err))
				result[name] = "unavailable"
				status = fiber.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}

		return ctx.Status(status).JSON(fiber.Map{"status": readinessStatus(status), "checks": result})
	}
}

func readinessStatus(status int) string {
	if status == fiber.StatusOK {
		return "ready"
	}
	return "degraded"
}
