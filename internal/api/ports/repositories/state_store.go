package repositories

import (
	"context"
	"time"
)

// StateStore хранит одноразовые state параметры OAuth.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error

	// Consume удаляет state и сообщает, существовал ли он.
	Consume(ctx context.Context, state string) (bool, error)
}
