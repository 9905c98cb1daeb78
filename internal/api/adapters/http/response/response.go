// Package response переводит ошибки домена в HTTP ответы вида {"detail": ...}.
package response

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
)

// Тексты ответов.
const (
	DetailEmailRegistered    = "Email already registered"
	DetailInvalidEmail       = "Invalid email address"
	DetailInvalidPassword    = "Invalid password"
	DetailEmptyTitle         = "Title is required"
	DetailInvalidBackground  = "Invalid background type"
	DetailInvalidOverlay     = "Invalid overlay data"
	DetailIncorrectLogin     = "Incorrect email or password"
	DetailInvalidToken       = "Could not validate credentials"
	DetailProviderMismatch   = "This email is linked to a Google account. Please login with Google."
	DetailForbiddenNote      = "Not authorized to access this note"
	DetailNoteNotFound       = "Note not found"
	DetailPageNotFound       = "Page not found or unauthorized"
	DetailUserNotFound       = "User not found"
	DetailInvalidRequest     = "Invalid request body"
	DetailInternalError      = "Internal Server Error"
	detailServerErrorPattern = "Server Error: %v"
)

type mapping struct {
	target error
	status int
	detail string
}

var mappings = []mapping{
	{services.ErrEmailAlreadyExists, fiber.StatusBadRequest, DetailEmailRegistered},
	{services.ErrInvalidEmail, fiber.StatusBadRequest, DetailInvalidEmail},
	{services.ErrInvalidPassword, fiber.StatusBadRequest, DetailInvalidPassword},
	{services.ErrEmptyTitle, fiber.StatusBadRequest, DetailEmptyTitle},
	{services.ErrInvalidBackgroundType, fiber.StatusBadRequest, DetailInvalidBackground},
	{services.ErrInvalidOverlay, fiber.StatusBadRequest, DetailInvalidOverlay},
	{services.ErrProviderMismatch, fiber.StatusBadRequest, DetailProviderMismatch},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, DetailIncorrectLogin},
	{services.ErrInvalidJWTToken, fiber.StatusUnauthorized, DetailInvalidToken},
	{services.ErrExpiredJWTToken, fiber.StatusUnauthorized, DetailInvalidToken},
	{services.ErrForbidden, fiber.StatusForbidden, DetailForbiddenNote},
	{entities.ErrNoteNotFound, fiber.StatusNotFound, DetailNoteNotFound},
	{entities.ErrPageNotFound, fiber.StatusNotFound, DetailPageNotFound},
	{entities.ErrUserNotFound, fiber.StatusNotFound, DetailUserNotFound},
}

// StatusFor возвращает HTTP статус и текст для ошибки.
func StatusFor(err error) (int, string) {
	if errors.Is(err, services.ErrNoteCreationFailed) {
		return fiber.StatusInternalServerError, fmt.Sprintf(detailServerErrorPattern, err)
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status, m.detail
		}
	}
	return fiber.StatusInternalServerError, DetailInternalError
}

// Error пишет ответ для ошибки домена.
func Error(ctx fiber.Ctx, err error) error {
	status, detail := StatusFor(err)
	if status == fiber.StatusUnauthorized {
		ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return Detail(ctx, status, detail)
}

// Detail пишет ответ {"detail": detail} с указанным статусом.
func Detail(ctx fiber.Ctx, status int, detail string) error {
	if err := ctx.Status(status).JSON(fiber.Map{"detail": detail}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
