package config

import (
	"net"
	"strconv"
	"time"
)

// HTTPConfig представляет конфигурацию HTTP сервера.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"API_HTTP_HOST" env-default:"0.0.0.0"`
	Port         int           `yaml:"port" env:"API_HTTP_PORT" env-default:"8000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"API_HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"API_HTTP_WRITE_TIMEOUT" env-default:"60s"`
	BodyLimitMB  int           `yaml:"body_limit_mb" env:"API_HTTP_BODY_LIMIT_MB" env-default:"50"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetBodyLimit возвращает максимальный размер тела запроса в байтах.
func (c *HTTPConfig) GetBodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 50 << 20
	}
	return c.BodyLimitMB << 20
}
