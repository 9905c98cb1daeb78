package logger

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// MaxRequestIDLength ограничивает длину принимаемого извне request_id.
const MaxRequestIDLength = 128

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// NewRequestIDContext кладет в контекст идентификатор запроса.
// Пустой или недопустимый идентификатор заменяется сгенерированным.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	id, ok := NormalizeRequestID(requestID)
	if !ok {
		id = GenerateRequestID()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// NormalizeRequestID проверяет идентификатор, пришедший от клиента.
// Допустимы буквы, цифры и символы "-_.:" длиной до MaxRequestIDLength.
func NormalizeRequestID(candidate string) (string, bool) {
	id := strings.TrimSpace(candidate)
	if id == "" || len(id) > MaxRequestIDLength {
		return "", false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return "", false
		}
	}
	return id, true
}

// GetRequestID возвращает идентификатор запроса из контекста.
func GetRequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// GenerateRequestID возвращает новый uuid.
func GenerateRequestID() string {
	return uuid.NewString()
}
