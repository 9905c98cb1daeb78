package services

import (
	"context"

	"neurolearn/internal/api/domain/services"
)

// OAuthService - клиент внешнего провайдера идентификации.
type OAuthService interface {
	AuthURL(state string) string

	Exchange(ctx context.Context, code string) (*services.GoogleClaims, error)
}
