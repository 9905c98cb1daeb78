package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"neurolearn/internal/api/adapters/http/response"
	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
	"neurolearn/internal/api/ports/api"
	"neurolearn/pkg/logger"
)

const (
	localsCurrentUser = "currentUser"

	LogAuthMiddleware       = "auth middleware"
	LogNoAuthHeader         = "no bearer token provided"
	LogCredentialsRejected  = "credentials rejected"
	LogAuthenticationFailed = "authentication failed"
)

// NewAuthMiddleware проверяет bearer токен и кладет пользователя в Locals.
func NewAuthMiddleware(auth api.AuthUseCase) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		token, ok := bearerToken(ctx.Get(fiber.HeaderAuthorization))
		if !ok {
			log.Debug(requestCtx, LogNoAuthHeader)
			return unauthorized(ctx)
		}

		user, err := auth.Authenticate(requestCtx, token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) ||
				errors.Is(err, services.ErrInvalidJWTToken) ||
				errors.Is(err, services.ErrExpiredJWTToken) {
				log.Debug(requestCtx, LogCredentialsRejected, zap.Error(err))
				return unauthorized(ctx)
			}
			log.Error(requestCtx, LogAuthenticationFailed, zap.Error(err))
			return response.Detail(ctx, fiber.StatusInternalServerError, response.DetailInternalError)
		}

		ctx.Locals(localsCurrentUser, user)
		return ctx.Next()
	}
}

// CurrentUser возвращает пользователя, установленный NewAuthMiddleware.
func CurrentUser(ctx fiber.Ctx) (*entities.User, bool) {
	user, ok := ctx.Locals(localsCurrentUser).(*entities.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(ctx fiber.Ctx) error {
	ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
}
