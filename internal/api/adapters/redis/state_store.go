// Package redis содержит хранилище одноразовых OAuth state в Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"neurolearn/internal/api/ports/repositories"
	"neurolearn/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodSave    = "save"
	LogMethodConsume = "consume"

	ErrorFailedToSave    = "failed to save oauth state"
	ErrorFailedToConsume = "failed to consume oauth state"

	statePrefix = "oauth_state:"
	stateValue  = "1"
)

// ErrEmptyState возвращается при попытке сохранить пустой state.
var ErrEmptyState = errors.New("oauth state is empty")

// KeyValue - подмножество операций клиента Redis, нужное хранилищу.
type KeyValue interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
}

// StateStore реализует repositories.StateStore.
type StateStore struct {
	kv KeyValue
}

// NewStateStore создает хранилище state поверх клиента Redis.
func NewStateStore(kv KeyValue) *StateStore {
	return &StateStore{kv: kv}
}

var _ repositories.StateStore = (*StateStore)(nil)

// Save сохраняет state на время ttl.
func (s *StateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSave))

	if state == "" {
		return ErrEmptyState
	}

	if err := s.kv.Set(ctx, statePrefix+state, stateValue, ttl); err != nil {
		log.Error(ctx, ErrorFailedToSave, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSave, err)
	}

	return nil
}

// Consume атомарно удаляет state. Повторное использование state возвращает false.
func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodConsume))

	if state == "" {
		return false, nil
	}

	_, err := s.kv.GetDel(ctx, statePrefix+state)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		log.Error(ctx, ErrorFailedToConsume, zap.Error(err))
		return false, fmt.Errorf("%s: %w", ErrorFailedToConsume, err)
	}

	return true, nil
}
