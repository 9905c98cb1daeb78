package services

import (
	"errors"
)

// Ошибки OAuth.
var (
	ErrUpstreamFailure   = errors.New("identity provider request failed")
	ErrInvalidOAuthState = errors.New("invalid or expired OAuth state")
	ErrMissingEmail      = errors.New("identity provider returned no email")
)

// GoogleClaims - сведения о пользователе, полученные от Google.
type GoogleClaims struct {
	Email     string
	Name      string
	AvatarURL string
}
