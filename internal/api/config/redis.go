package config

import (
	"net"
	"strconv"
	"time"
)

// RedisConfig представляет конфигурацию для Redis.
type RedisConfig struct {
	Host     string        `yaml:"host" env:"API_REDIS_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"API_REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"API_REDIS_PASSWORD" env-default:""`
	DB       int           `yaml:"db" env:"API_REDIS_DB" env-default:"0"`
	PoolSize int           `yaml:"pool_size" env:"API_REDIS_POOL_SIZE" env-default:"10"`
	Timeout  time.Duration `yaml:"timeout" env:"API_REDIS_TIMEOUT" env-default:"3s"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetHost возвращает хост Redis.
func (c *RedisConfig) GetHost() string { return c.Host }

// GetPort возвращает порт Redis.
func (c *RedisConfig) GetPort() int { return c.Port }

// GetPassword возвращает пароль Redis.
func (c *RedisConfig) GetPassword() string { return c.Password }

// GetDB возвращает номер базы Redis.
func (c *RedisConfig) GetDB() int { return c.DB }

// GetPoolSize возвращает размер пула соединений.
func (c *RedisConfig) GetPoolSize() int { return c.PoolSize }

// GetTimeout возвращает таймаут операций.
func (c *RedisConfig) GetTimeout() time.Duration { return c.Timeout }
