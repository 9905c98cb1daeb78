// Package services содержит ошибки и типы доменных сервисов.
package services

import (
	"errors"
	"time"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrProviderMismatch   = errors.New("email is linked to a Google account")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrTokenIssueFailed   = errors.New("failed to issue access token")
)

// TokenTypeBearer - тип выдаваемого токена.
const TokenTypeBearer = "bearer"

// TokenResult - результат успешного входа.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}
