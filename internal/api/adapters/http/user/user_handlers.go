// Package user содержит HTTP обработчики профиля пользователя.
package user

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"neurolearn/internal/api/adapters/http/dto"
	"neurolearn/internal/api/adapters/http/middleware"
	"neurolearn/internal/api/adapters/http/response"
	"neurolearn/internal/api/ports/api"
	"neurolearn/pkg/logger"
)

const (
	LogHandlerGetMe    = "user handler: get me"
	LogHandlerUpdateMe = "user handler: update me"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
)

// Handler содержит HTTP обработчики профиля.
type Handler struct {
	users api.UserUseCase
}

// NewHandler создает обработчик профиля.
func NewHandler(users api.UserUseCase) *Handler {
	return &Handler{users: users}
}

// GetMe возвращает профиль текущего пользователя.
func (h *Handler) GetMe(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGetMe)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
	}

	if err := ctx.JSON(dto.NewUserResponse(current)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// UpdateMe применяет частичное обновление профиля.
func (h *Handler) UpdateMe(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerUpdateMe)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
	}

	var req dto.UpdateUserRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return response.Detail(ctx, fiber.StatusBadRequest, response.DetailInvalidRequest)
	}

	updated, err := h.users.UpdateProfile(requestCtx, current.ID, req.ToProfileUpdate())
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	if err := ctx.JSON(dto.NewUserResponse(updated)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}
