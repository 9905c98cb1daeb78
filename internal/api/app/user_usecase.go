package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
	"neurolearn/internal/api/ports/api"
	"neurolearn/internal/api/ports/repositories"
	"neurolearn/pkg/logger"
)

const (
	methodGetProfile    = "GetProfile"
	methodUpdateProfile = "UpdateProfile"

	msgRequestingProfile = "requesting user profile"
	msgProfileRetrieved  = "user profile successfully retrieved"
	msgProfileUnchanged  = "profile update without changes"
	msgProfileUpdated    = "user profile updated"

	msgErrFindingUserByID = "failed to find user by ID"
	msgErrUpdatingUser    = "failed to update user"

	errCtxFetchingProfile = "fetching user profile"
	errCtxUpdatingProfile = "updating user profile"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo repositories.UserRepository
}

// NewUserUseCase создает новый экземпляр сервиса пользователя.
func NewUserUseCase(userRepo repositories.UserRepository) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo: userRepo,
	}
}

// GetProfile получает профиль пользователя по ID.
func (u *UserUseCaseImpl) GetProfile(ctx context.Context, userID int64) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetProfile), zap.Int64("userID", userID))
	log.Debug(ctx, msgRequestingProfile)

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Error(ctx, msgErrFindingUserByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	log.Debug(ctx, msgProfileRetrieved)
	return user, nil
}

// UpdateProfile применяет непустые поля обновления.
// Смена email на уже занятый возвращает ErrEmailAlreadyExists.
func (u *UserUseCaseImpl) UpdateProfile(
	ctx context.Context,
	userID int64,
	update entities.ProfileUpdate,
) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateProfile), zap.Int64("userID", userID))

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Error(ctx, msgErrFindingUserByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	if update.Email != nil && *update.Email != "" && *update.Email != user.Email {
		if err := validateEmail(*update.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
		}

		existing, err := u.userRepo.FindByEmail(ctx, *update.Email)
		if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
			log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
		}
	}

	if !update.Apply(user) {
		log.Debug(ctx, msgProfileUnchanged)
		return user, nil
	}

	updated, err := u.userRepo.Update(ctx, user)
	if err != nil {
		if !errors.Is(err, services.ErrEmailAlreadyExists) {
			log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingProfile, err)
	}

	log.Info(ctx, msgProfileUpdated)
	return updated, nil
}
