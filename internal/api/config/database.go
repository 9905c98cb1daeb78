package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host          string `yaml:"host" env:"API_POSTGRES_HOST" env-default:"localhost"`
	Port          int    `yaml:"port" env:"API_POSTGRES_PORT" env-default:"5432"`
	User          string `yaml:"user" env:"API_POSTGRES_USER" env-default:"postgres"`
	Password      string `yaml:"password" env:"API_POSTGRES_PASSWORD" env-default:"postgres"`
	Database      string `yaml:"database" env:"API_POSTGRES_DB" env-default:"neurolearn"`
	MinConn       int    `yaml:"min_conn" env:"API_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn       int    `yaml:"max_conn" env:"API_POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsDir string `yaml:"migrations_dir" env:"API_POSTGRES_MIGRATIONS_DIR" env-default:"migrations/api"`
	ConnectTries  int    `yaml:"connect_tries" env:"API_POSTGRES_CONNECT_TRIES" env-default:"5"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
