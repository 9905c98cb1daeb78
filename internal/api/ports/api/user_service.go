package api

import (
	"context"

	"neurolearn/internal/api/domain/entities"
)

// UserUseCase определяет основной порт для пользовательских операций.
type UserUseCase interface {
	GetProfile(ctx context.Context, userID int64) (*entities.User, error)

	UpdateProfile(ctx context.Context, userID int64, update entities.ProfileUpdate) (*entities.User, error)
}
