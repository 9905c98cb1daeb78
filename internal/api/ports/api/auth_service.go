// Package api определяет входящие порты сервиса (use case интерфейсы).
package api

import (
	"context"

	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
)

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (*entities.User, error)

	Login(ctx context.Context, email, password string) (*services.TokenResult, error)

	LoginWithGoogle(ctx context.Context, claims *services.GoogleClaims) (*services.TokenResult, error)

	Authenticate(ctx context.Context, token string) (*entities.User, error)
}

// OAuthUseCase описывает двухфазный вход через Google.
type OAuthUseCase interface {
	// BeginGoogleLogin сохраняет новый state и возвращает URL страницы согласия.
	BeginGoogleLogin(ctx context.Context) (string, error)

	// CompleteGoogleLogin проверяет state, обменивает code и выдает токен.
	CompleteGoogleLogin(ctx context.Context, state, code string) (*services.TokenResult, error)
}
