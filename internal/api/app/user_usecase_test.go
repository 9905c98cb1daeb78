package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"neurolearn/internal/api/app"
	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
)

func TestGetProfile(t *testing.T) {
	user := &entities.User{ID: 5, Email: "carol@example.com", Provider: entities.ProviderEmail}

	tests := []struct {
		name        string
		setupMocks  func(repo *mockUserRepository)
		expectedErr error
	}{
		{
			name: "Success",
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, int64(5)).Return(user, nil).Once()
			},
		},
		{
			name: "Error - not found",
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, int64(5)).Return(nil, entities.ErrUserNotFound).Once()
			},
			expectedErr: entities.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			tt.setupMocks(repo)

			got, err := app.NewUserUseCase(repo).GetProfile(context.Background(), 5)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	const (
		userID   = int64(5)
		oldEmail = "carol@example.com"
		newEmail = "carol@work.example.com"
	)
	current := func() *entities.User {
		return &entities.User{ID: userID, Email: oldEmail, Name: strPtr("Carol"), Provider: entities.ProviderEmail}
	}

	tests := []struct {
		name        string
		update      entities.ProfileUpdate
		setupMocks  func(repo *mockUserRepository)
		check       func(t *testing.T, got *entities.User)
		expectedErr error
	}{
		{
			name:   "Success - name and avatar",
			update: entities.ProfileUpdate{Name: strPtr("Caroline"), AvatarURL: strPtr("https://img/c.png")},
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, userID).Return(current(), nil).Once()
				repo.On("Update", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
					return *u.Name == "Caroline" && *u.AvatarURL == "https://img/c.png" && u.Email == oldEmail
				})).Return(&entities.User{ID: userID, Email: oldEmail, Name: strPtr("Caroline")}, nil).Once()
			},
			check: func(t *testing.T, got *entities.User) {
				assert.Equal(t, "Caroline", *got.Name)
			},
		},
		{
			name:   "Success - empty strings are ignored",
			update: entities.ProfileUpdate{Email: strPtr(""), Name: strPtr("")},
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, userID).Return(current(), nil).Once()
			},
			check: func(t *testing.T, got *entities.User) {
				assert.Equal(t, oldEmail, got.Email)
				assert.Equal(t, "Carol", *got.Name)
			},
		},
		{
			name:   "Success - email change",
			update: entities.ProfileUpdate{Email: strPtr(newEmail)},
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, userID).Return(current(), nil).Once()
				repo.On("FindByEmail", mock.Anything, newEmail).Return(nil, entities.ErrUserNotFound).Once()
				updated := current()
				updated.Email = newEmail
				repo.On("Update", mock.Anything, mock.Anything).Return(updated, nil).Once()
			},
			check: func(t *testing.T, got *entities.User) {
				assert.Equal(t, newEmail, got.Email)
			},
		},
		{
			name:   "Error - email taken",
			update: entities.ProfileUpdate{Email: strPtr(newEmail)},
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, userID).Return(current(), nil).Once()
				repo.On("FindByEmail", mock.Anything, newEmail).
					Return(&entities.User{ID: 9, Email: newEmail}, nil).Once()
			},
			expectedErr: services.ErrEmailAlreadyExists,
		},
		{
			name:   "Error - malformed email",
			update: entities.ProfileUpdate{Email: strPtr("nope")},
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, userID).Return(current(), nil).Once()
			},
			expectedErr: services.ErrInvalidEmail,
		},
		{
			name:   "Error - unique violation on update",
			update: entities.ProfileUpdate{Email: strPtr(newEmail)},
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, userID).Return(current(), nil).Once()
				repo.On("FindByEmail", mock.Anything, newEmail).Return(nil, entities.ErrUserNotFound).Once()
				repo.On("Update", mock.Anything, mock.Anything).Return(nil, services.ErrEmailAlreadyExists).Once()
			},
			expectedErr: services.ErrEmailAlreadyExists,
		},
		{
			name:   "Error - user missing",
			update: entities.ProfileUpdate{Name: strPtr("X")},
			setupMocks: func(repo *mockUserRepository) {
				repo.On("FindByID", mock.Anything, userID).Return(nil, entities.ErrUserNotFound).Once()
			},
			expectedErr: entities.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			tt.setupMocks(repo)

			got, err := app.NewUserUseCase(repo).UpdateProfile(context.Background(), userID, tt.update)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				tt.check(t, got)
			}
			repo.AssertExpectations(t)
		})
	}
}
