// Package auth содержит HTTP обработчики регистрации и входа.
package auth

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"neurolearn/internal/api/adapters/http/dto"
	"neurolearn/internal/api/adapters/http/middleware"
	"neurolearn/internal/api/adapters/http/response"
	"neurolearn/internal/api/ports/api"
	"neurolearn/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister    = "auth handler: register"
	LogHandlerLogin       = "auth handler: login"
	LogHandlerGoogleLogin = "auth handler: google login"
	LogHandlerCallback    = "auth handler: google callback"
	LogHandlerMe          = "auth handler: me"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
	ErrorProviderDenied       = "provider returned error"
	ErrorCallbackFailed       = "google callback failed"

	detailMissingCredentials = "username and password are required"

	pathAuthError     = "/auth/error"
	pathGoogleSuccess = "/auth/google-success"
)

// Handler содержит HTTP обработчики для авторизации.
type Handler struct {
	auth        api.AuthUseCase
	oauth       api.OAuthUseCase
	frontendURL string
}

// NewHandler создает новый экземпляр обработчика авторизации.
func NewHandler(auth api.AuthUseCase, oauth api.OAuthUseCase, frontendURL string) *Handler {
	return &Handler{
		auth:        auth,
		oauth:       oauth,
		frontendURL: frontendURL,
	}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return response.Detail(ctx, fiber.StatusBadRequest, response.DetailInvalidRequest)
	}

	user, err := h.auth.Register(requestCtx, req.Email, req.Password)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	if err := ctx.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Login принимает форму username/password и выдает bearer токен.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerLogin)

	email := ctx.FormValue("username")
	password := ctx.FormValue("password")
	if email == "" || password == "" {
		return response.Detail(ctx, fiber.StatusBadRequest, detailMissingCredentials)
	}

	result, err := h.auth.Login(requestCtx, email, password)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	if err := ctx.JSON(dto.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// GoogleLogin перенаправляет браузер на страницу согласия Google.
func (h *Handler) GoogleLogin(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerGoogleLogin)

	consentURL, err := h.oauth.BeginGoogleLogin(requestCtx)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	return ctx.Redirect().Status(fiber.StatusFound).To(consentURL)
}

// GoogleCallback завершает вход через Google. Любая ошибка ведет на страницу
// ошибки фронтенда, успех передает токен в query параметре.
func (h *Handler) GoogleCallback(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerCallback)

	if providerErr := ctx.Query("error"); providerErr != "" {
		log.Warn(requestCtx, ErrorProviderDenied, zap.String("error", providerErr))
		return h.redirectError(ctx)
	}

	result, err := h.oauth.CompleteGoogleLogin(requestCtx, ctx.Query("state"), ctx.Query("code"))
	if err != nil {
		log.Warn(requestCtx, ErrorCallbackFailed, zap.Error(err))
		return h.redirectError(ctx)
	}

	target := h.frontendURL + pathGoogleSuccess + "?" + url.Values{"token": {result.AccessToken}}.Encode()
	return ctx.Redirect().Status(fiber.StatusFound).To(target)
}

// Me возвращает профиль текущего пользователя.
func (h *Handler) Me(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerMe)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
	}

	if err := ctx.JSON(dto.NewUserResponse(user)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

func (h *Handler) redirectError(ctx fiber.Ctx) error {
	return ctx.Redirect().Status(fiber.StatusFound).To(h.frontendURL + pathAuthError)
}
