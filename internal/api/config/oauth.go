package config

import (
	"strings"
	"time"
)

// OAuthConfig содержит настройки входа через Google.
type OAuthConfig struct {
	ClientID     string        `yaml:"client_id" env:"API_OAUTH_CLIENT_ID" env-default:""`
	ClientSecret string        `yaml:"client_secret" env:"API_OAUTH_CLIENT_SECRET" env-default:""`
	RedirectURL  string        `yaml:"redirect_url" env:"API_OAUTH_REDIRECT_URL" env-default:"http://localhost:8000/auth/callback"`
	FrontendURL  string        `yaml:"frontend_url" env:"API_OAUTH_FRONTEND_URL" env-default:"http://localhost:3000"`
	StateTTL     time.Duration `yaml:"state_ttl" env:"API_OAUTH_STATE_TTL" env-default:"10m"`
}

// GetFrontendURL возвращает адрес фронтенда без завершающего слэша.
func (c *OAuthConfig) GetFrontendURL() string {
	return strings.TrimRight(c.FrontendURL, "/")
}

// GetStateTTL возвращает время жизни state параметра.
func (c *OAuthConfig) GetStateTTL() time.Duration {
	if c.StateTTL <= 0 {
		return 10 * time.Minute
	}
	return c.StateTTL
}
