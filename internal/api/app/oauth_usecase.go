package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"neurolearn/internal/api/domain/services"
	"neurolearn/internal/api/ports/api"
	"neurolearn/internal/api/ports/repositories"
	svc "neurolearn/internal/api/ports/services"
	"neurolearn/pkg/logger"
)

const (
	methodBeginGoogleLogin    = "BeginGoogleLogin"
	methodCompleteGoogleLogin = "CompleteGoogleLogin"

	msgStateSaved        = "oauth state saved"
	msgStateRejected     = "oauth state rejected"
	msgMissingCode       = "callback without authorization code"
	msgErrSaveState      = "failed to save oauth state"
	msgErrConsumeState   = "failed to consume oauth state"
	msgErrExchange       = "code exchange failed"
	errCtxSavingState    = "saving oauth state"
	errCtxConsumingState = "consuming oauth state"
	errCtxExchangingCode = "exchanging code"
)

// OAuthUseCaseImpl реализует вход через Google: state в Redis, обмен code и выдачу токена.
type OAuthUseCaseImpl struct {
	states   repositories.StateStore
	provider svc.OAuthService
	auth     api.AuthUseCase
	stateTTL time.Duration
}

// NewOAuthUseCase создает use case входа через Google.
func NewOAuthUseCase(
	states repositories.StateStore,
	provider svc.OAuthService,
	auth api.AuthUseCase,
	stateTTL time.Duration,
) api.OAuthUseCase {
	return &OAuthUseCaseImpl{
		states:   states,
		provider: provider,
		auth:     auth,
		stateTTL: stateTTL,
	}
}

// BeginGoogleLogin создает одноразовый state и возвращает URL страницы согласия.
func (o *OAuthUseCaseImpl) BeginGoogleLogin(ctx context.Context) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodBeginGoogleLogin))

	state := uuid.NewString()
	if err := o.states.Save(ctx, state, o.stateTTL); err != nil {
		log.Error(ctx, msgErrSaveState, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxSavingState, err)
	}

	log.Debug(ctx, msgStateSaved)
	return o.provider.AuthURL(state), nil
}

// CompleteGoogleLogin проверяет state, обменивает code на claims и выдает токен.
func (o *OAuthUseCaseImpl) CompleteGoogleLogin(ctx context.Context, state, code string) (*services.TokenResult, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCompleteGoogleLogin))

	ok, err := o.states.Consume(ctx, state)
	if err != nil {
		log.Error(ctx, msgErrConsumeState, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxConsumingState, err)
	}
	if !ok {
		log.Warn(ctx, msgStateRejected)
		return nil, services.ErrInvalidOAuthState
	}

	if code == "" {
		log.Warn(ctx, msgMissingCode)
		return nil, fmt.Errorf("%s: %w: missing code", errCtxExchangingCode, services.ErrUpstreamFailure)
	}

	claims, err := o.provider.Exchange(ctx, code)
	if err != nil {
		log.Warn(ctx, msgErrExchange, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxExchangingCode, err)
	}

	return o.auth.LoginWithGoogle(ctx, claims)
}
