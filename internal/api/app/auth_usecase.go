// Package app содержит use case сервиса: аутентификацию, профиль и заметки.
package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
	"neurolearn/internal/api/ports/api"
	"neurolearn/internal/api/ports/repositories"
	svc "neurolearn/internal/api/ports/services"
	"neurolearn/pkg/logger"
)

const (
	methodRegister        = "Register"
	methodLogin           = "Login"
	methodLoginWithGoogle = "LoginWithGoogle"
	methodAuthenticate    = "Authenticate"

	msgStartRegistration  = "starting user registration"
	msgInvalidEmailFormat = "invalid email format"
	msgInvalidPassword    = "invalid password"
	msgEmailExists        = "user with this email already exists"
	msgUserRegistered     = "user registered successfully"
	msgLoginAttempt       = "login attempt"
	msgLoginNonExistent   = "login attempt with non-existent email"
	msgLoginGoogleLinked  = "password login attempt for google account"
	msgWrongPassword      = "invalid password provided"
	msgUserLoggedIn       = "user logged in successfully"
	msgGoogleUserCreated  = "google user created"
	msgGoogleUserLoggedIn = "google user logged in"
	msgTokenRejected      = "bearer token rejected"
	msgTokenSubjectGone   = "token subject no longer exists"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrFindingUser       = "error finding user by email"
	msgErrVerifyingPassword = "error verifying password"
	msgErrIssueToken        = "failed to issue access token"

	errCtxValidatingEmail    = "validating email"
	errCtxValidatingPassword = "validating password"
	errCtxCheckingUser       = "checking existing user"
	errCtxEmailRegistered    = "email already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxProviderMismatch   = "provider mismatch"
	errCtxFindingUser        = "finding user"
	errCtxVerifyingPassword  = "verifying password"
	errCtxIssuingToken       = "issuing token"
	errCtxValidatingToken    = "validating token"
	errCtxGoogleClaims       = "reading google claims"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register создает пользователя с провайдером email.
func (a *AuthUseCaseImpl) Register(ctx context.Context, email, password string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", email))
	log.Debug(ctx, msgStartRegistration)

	if err := validateEmail(email); err != nil {
		log.Debug(ctx, msgInvalidEmailFormat)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}
	if password == "" {
		log.Debug(ctx, msgInvalidPassword)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, services.ErrInvalidPassword)
	}

	existingUser, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existingUser != nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPassword) {
			log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		} else {
			log.Error(ctx, msgErrHashPassword, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	createdUser, err := a.userRepo.Create(ctx, &entities.User{
		Email:        email,
		PasswordHash: &hashedPassword,
		Provider:     entities.ProviderEmail,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			log.Debug(ctx, msgEmailExists)
		} else {
			log.Error(ctx, msgErrCreateUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.Int64("userID", createdUser.ID))
	return createdUser, nil
}

// Login проверяет email и пароль и выдает bearer токен.
// Пользователь Google получает отдельную ошибку ErrProviderMismatch.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (*services.TokenResult, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	if user.Provider == entities.ProviderGoogle || !user.HasPassword() {
		log.Debug(ctx, msgLoginGoogleLinked)
		return nil, fmt.Errorf("%s: %w", errCtxProviderMismatch, services.ErrProviderMismatch)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, *user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgWrongPassword)
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	result, err := a.issueToken(ctx, user.Email)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err))
		return nil, err
	}

	log.Info(ctx, msgUserLoggedIn, zap.Int64("userID", user.ID))
	return result, nil
}

// LoginWithGoogle находит или создает пользователя по claims Google и выдает токен.
// Существующий пользователь принимается независимо от провайдера.
func (a *AuthUseCaseImpl) LoginWithGoogle(ctx context.Context, claims *services.GoogleClaims) (*services.TokenResult, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLoginWithGoogle))

	if claims == nil || claims.Email == "" {
		return nil, fmt.Errorf("%s: %w", errCtxGoogleClaims, services.ErrMissingEmail)
	}
	log = log.With(zap.String("email", claims.Email))

	user, err := a.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	if user == nil {
		user, err = a.createGoogleUser(ctx, claims)
		if err != nil {
			log.Error(ctx, msgErrCreateUser, zap.Error(err))
			return nil, err
		}
		log.Info(ctx, msgGoogleUserCreated, zap.Int64("userID", user.ID))
	}

	result, err := a.issueToken(ctx, user.Email)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err))
		return nil, err
	}

	log.Info(ctx, msgGoogleUserLoggedIn, zap.Int64("userID", user.ID))
	return result, nil
}

// createGoogleUser создает пользователя Google. Если параллельный запрос успел
// создать его раньше, возвращается уже существующая запись.
func (a *AuthUseCaseImpl) createGoogleUser(ctx context.Context, claims *services.GoogleClaims) (*entities.User, error) {
	newUser := &entities.User{
		Email:    claims.Email,
		Provider: entities.ProviderGoogle,
	}
	if claims.Name != "" {
		name := claims.Name
		newUser.Name = &name
	}
	if claims.AvatarURL != "" {
		avatar := claims.AvatarURL
		newUser.AvatarURL = &avatar
	}

	created, err := a.userRepo.Create(ctx, newUser)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, services.ErrEmailAlreadyExists) {
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	existing, findErr := a.userRepo.FindByEmail(ctx, claims.Email)
	if findErr != nil {
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, findErr)
	}
	return existing, nil
}

// Authenticate проверяет bearer токен и возвращает его владельца.
func (a *AuthUseCaseImpl) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodAuthenticate))

	claims, err := a.tokenSvc.ValidateAccessToken(ctx, token)
	if err != nil {
		log.Debug(ctx, msgTokenRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, err)
	}

	user, err := a.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgTokenSubjectGone)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	return user, nil
}

func (a *AuthUseCaseImpl) issueToken(ctx context.Context, subject string) (*services.TokenResult, error) {
	token, expiresAt, err := a.tokenSvc.GenerateAccessToken(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtxIssuingToken, services.ErrTokenIssueFailed, err)
	}

	return &services.TokenResult{
		AccessToken: token,
		TokenType:   services.TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// Валидация email.
func validateEmail(email string) error {
	if email == "" || !emailRegex.MatchString(email) {
		return services.ErrInvalidEmail
	}
	return nil
}
