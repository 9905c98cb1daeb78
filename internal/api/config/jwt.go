package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedAlgorithm возвращается для алгоритма подписи вне семейства HMAC.
var ErrUnsupportedAlgorithm = errors.New("unsupported JWT signing algorithm")

// Поддерживаемые алгоритмы подписи.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmHS384 = "HS384"
	AlgorithmHS512 = "HS512"
)

// JWTConfig содержит настройки для JWT токенов и хеширования паролей.
type JWTConfig struct {
	SecretKey      string `yaml:"secret_key" env:"API_JWT_SECRET_KEY" env-default:"super-secret-key-change-me-in-production"`
	Algorithm      string `yaml:"algorithm" env:"API_JWT_ALGORITHM" env-default:"HS256"`
	AccessTokenTTL string `yaml:"access_token_ttl" env:"API_JWT_ACCESS_TOKEN_TTL" env-default:"60m"`
	BCryptCost     int    `yaml:"bcrypt_cost" env:"API_JWT_BCRYPT_COST" env-default:"10"`
}

// GetAccessTokenTTL возвращает продолжительность времени жизни access токена.
func (c *JWTConfig) GetAccessTokenTTL() time.Duration {
	duration, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil || duration <= 0 {
		return 60 * time.Minute
	}
	return duration
}

// Validate проверяет алгоритм подписи.
func (c *JWTConfig) Validate() error {
	switch c.Algorithm {
	case AlgorithmHS256, AlgorithmHS384, AlgorithmHS512:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, c.Algorithm)
	}
}
