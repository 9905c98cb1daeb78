package services

import (
	"context"
	"time"

	"neurolearn/internal/api/domain/services"
)

// TokenService определяет интерфейс для операций с токенами JWT.
type TokenService interface {
	GenerateAccessToken(ctx context.Context, subject string) (string, time.Time, error)

	ValidateAccessToken(ctx context.Context, token string) (*services.JWTClaims, error)
}
