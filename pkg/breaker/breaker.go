// Package breaker защищает вызовы внешних сервисов от каскадных отказов.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"neurolearn/pkg/logger"
)

// State - состояние автомата.
type State int

// Состояния автомата.
const (
	// StateClosed - вызовы проходят.
	StateClosed State = iota
	// StateOpen - вызовы отклоняются до истечения OpenTimeout.
	StateOpen
	// StateHalfOpen - пропускаются пробные вызовы.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Константы для логирования.
const (
	LogStateChanged = "circuit breaker state changed"
	LogRejected     = "circuit breaker rejected call"
)

// ErrOpen возвращается, пока автомат разомкнут.
var ErrOpen = errors.New("circuit breaker is open")

// Config содержит настройки автомата.
type Config struct {
	// FailureThreshold - число ошибок подряд, после которого автомат размыкается.
	FailureThreshold int
	// OpenTimeout - время, после которого разрешается пробный вызов.
	OpenTimeout time.Duration
	// SuccessThreshold - число удачных пробных вызовов для замыкания.
	SuccessThreshold int
	// IsFailure решает, считать ли ошибку отказом сервиса.
	IsFailure func(error) bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		OpenTimeout:      10 * time.Second,
		SuccessThreshold: 2,
		IsFailure:        defaultIsFailure,
	}
}

func defaultIsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Breaker - потокобезопасный circuit breaker.
type Breaker struct {
	name   string
	config Config
	now    func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	changedAt time.Time
}

// Option настраивает Breaker.
type Option func(*Breaker)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// New создает автомат. Незаданные поля берутся из DefaultConfig.
func New(name string, config Config, opts ...Option) *Breaker {
	def := DefaultConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = def.OpenTimeout
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.IsFailure == nil {
		config.IsFailure = def.IsFailure
	}

	b := &Breaker{name: name, config: config, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	b.changedAt = b.now()
	return b
}

// Execute вызывает fn, если автомат это разрешает, и учитывает результат.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !b.allow(ctx) {
		logger.Log(ctx).Warn(ctx, LogRejected, zap.String("circuit_breaker", b.name))
		return ErrOpen
	}

	err := fn(ctx)
	b.record(ctx, err)
	return err
}

// State возвращает текущее состояние.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return true
	}
	if b.now().Sub(b.changedAt) < b.config.OpenTimeout {
		return false
	}
	b.transition(ctx, StateHalfOpen)
	return true
}

func (b *Breaker) record(ctx context.Context, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && b.config.IsFailure(err) {
		switch b.state {
		case StateClosed:
			b.failures++
			if b.failures >= b.config.FailureThreshold {
				b.transition(ctx, StateOpen)
			}
		case StateHalfOpen:
			b.transition(ctx, StateOpen)
		}
		return
	}

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transition(ctx, StateClosed)
		}
	}
}

// transition вызывается под mu.
func (b *Breaker) transition(ctx context.Context, to State) {
	logger.Log(ctx).Info(ctx, LogStateChanged,
		zap.String("circuit_breaker", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
		zap.Int("failures", b.failures))

	b.state = to
	b.changedAt = b.now()
	b.failures = 0
	b.successes = 0
}
