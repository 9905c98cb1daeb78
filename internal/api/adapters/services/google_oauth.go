package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"neurolearn/internal/api/domain/services"
	svc "neurolearn/internal/api/ports/services"
	"neurolearn/pkg/breaker"
	"neurolearn/pkg/logger"
)

// GoogleUserInfoURL - OpenID userinfo endpoint Google.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

const (
	methodExchange        = "Exchange"
	msgExchangingCode     = "exchanging authorization code"
	msgClaimsFromIDToken  = "claims taken from id_token"
	msgClaimsFromUserInfo = "claims taken from userinfo endpoint"
	errCtxExchange        = "exchanging code"
	errCtxIDToken         = "reading id_token"
	errCtxUserInfo        = "fetching userinfo"
	errCtxBreaker         = "google unavailable"
	maxUserInfoBytes      = 1 << 20
)

// GoogleOAuth реализует OAuthService поверх golang.org/x/oauth2.
type GoogleOAuth struct {
	config      *oauth2.Config
	userInfoURL string
	breaker     *breaker.Breaker
}

// GoogleOption настраивает GoogleOAuth.
type GoogleOption func(*GoogleOAuth)

// WithEndpoint подменяет OAuth endpoint провайдера.
func WithEndpoint(endpoint oauth2.Endpoint) GoogleOption {
	return func(g *GoogleOAuth) {
		g.config.Endpoint = endpoint
	}
}

// WithUserInfoURL подменяет адрес userinfo endpoint.
func WithUserInfoURL(url string) GoogleOption {
	return func(g *GoogleOAuth) {
		g.userInfoURL = url
	}
}

// WithBreaker подменяет circuit breaker вызовов Google.
func WithBreaker(b *breaker.Breaker) GoogleOption {
	return func(g *GoogleOAuth) {
		g.breaker = b
	}
}

// NewGoogleOAuth создает клиента Google со scope openid, email и profile.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string, opts ...GoogleOption) *GoogleOAuth {
	g := &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: GoogleUserInfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.breaker == nil {
		cfg := breaker.DefaultConfig()
		cfg.IsFailure = isGoogleOutage
		g.breaker = breaker.New("google-oauth", cfg)
	}
	return g
}

// isGoogleOutage отделяет отказы Google от ошибок клиента:
// отклоненный code и отсутствие email не размыкают автомат.
func isGoogleOutage(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, services.ErrMissingEmail) {
		return false
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return retrieveErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return true
}

var _ svc.OAuthService = (*GoogleOAuth)(nil)

// AuthURL возвращает адрес страницы согласия для state.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Exchange обменивает code на токен и извлекает сведения о пользователе.
// Пока Google недоступен, вызовы отклоняются без обращения к сети.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*services.GoogleClaims, error) {
	var claims *services.GoogleClaims
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		claims, err = g.exchange(ctx, code)
		return err
	})
	if errors.Is(err, breaker.ErrOpen) {
		return nil, fmt.Errorf("%s: %w: %w", errCtxBreaker, services.ErrUpstreamFailure, err)
	}
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// id_token получен напрямую от token endpoint по TLS, поэтому его подпись не проверяется.
func (g *GoogleOAuth) exchange(ctx context.Context, code string) (*services.GoogleClaims, error) {
	log := logger.Log(ctx).With(zap.String("method", methodExchange))
	log.Debug(ctx, msgExchangingCode)

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		log.Warn(ctx, errCtxExchange, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxExchange, services.ErrUpstreamFailure, err)
	}

	var profile *googleProfile
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		profile, err = profileFromIDToken(raw)
		if err != nil {
			log.Warn(ctx, errCtxIDToken, zap.Error(err))
		} else {
			log.Debug(ctx, msgClaimsFromIDToken)
		}
	}

	if profile == nil || profile.Email == "" {
		profile, err = g.fetchUserInfo(ctx, token)
		if err != nil {
			log.Warn(ctx, errCtxUserInfo, zap.Error(err))
			return nil, fmt.Errorf("%s: %w: %w", errCtxUserInfo, services.ErrUpstreamFailure, err)
		}
		log.Debug(ctx, msgClaimsFromUserInfo)
	}

	if profile.Email == "" {
		return nil, fmt.Errorf("%w: %w", services.ErrUpstreamFailure, services.ErrMissingEmail)
	}

	return &services.GoogleClaims{
		Email:     profile.Email,
		Name:      profile.Name,
		AvatarURL: profile.Picture,
	}, nil
}

func profileFromIDToken(raw string) (*googleProfile, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}

	profile := &googleProfile{}
	profile.Email, _ = claims["email"].(string)
	profile.Name, _ = claims["name"].(string)
	profile.Picture, _ = claims["picture"].(string)
	return profile, nil
}

func (g *GoogleOAuth) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	profile := &googleProfile{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
