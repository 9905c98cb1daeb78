// Package services содержит адаптеры технических сервисов: хеширование паролей,
// JWT и клиент Google OAuth.
package services

import (
	"fmt"

	"neurolearn/internal/api/config"
	"neurolearn/internal/api/ports/services"
)

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService services.PasswordService
	tokenService    services.TokenService
	oauthService    services.OAuthService
}

// NewServiceFactory создает фабрику сервисов из конфигурации.
func NewServiceFactory(jwtCfg *config.JWTConfig, oauthCfg *config.OAuthConfig, opts ...GoogleOption) (*ServiceFactory, error) {
	tokenService, err := NewJWT(jwtCfg.SecretKey, jwtCfg.Algorithm, jwtCfg.GetAccessTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	return &ServiceFactory{
		passwordService: NewBcrypt(jwtCfg.BCryptCost),
		tokenService:    tokenService,
		oauthService:    NewGoogleOAuth(oauthCfg.ClientID, oauthCfg.ClientSecret, oauthCfg.RedirectURL, opts...),
	}, nil
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwordService
}

// TokenService возвращает сервис для работы с токенами.
func (f *ServiceFactory) TokenService() services.TokenService {
	return f.tokenService
}

// OAuthService возвращает клиент Google OAuth.
func (f *ServiceFactory) OAuthService() services.OAuthService {
	return f.oauthService
}
