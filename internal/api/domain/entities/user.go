// Package entities содержит сущности домена NeuroLearn.
package entities

import (
	"errors"
	"time"
)

// ErrUserNotFound возвращается, когда пользователь отсутствует в хранилище.
var ErrUserNotFound = errors.New("user not found")

// Provider - способ, которым пользователь был создан.
type Provider string

// Поддерживаемые провайдеры.
const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
)

// User представляет основную сущность домена пользователя.
// PasswordHash задан только для ProviderEmail.
type User struct {
	ID           int64
	Email        string
	Name         *string
	AvatarURL    *string
	PasswordHash *string
	Provider     Provider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword сообщает, может ли пользователь входить по паролю.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// ProfileUpdate описывает частичное обновление профиля.
// Применяются только непустые поля.
type ProfileUpdate struct {
	Email     *string
	Name      *string
	AvatarURL *string
}

// Apply переносит непустые поля обновления в пользователя и сообщает, изменилось ли что-то.
func (p ProfileUpdate) Apply(u *User) bool {
	changed := false
	if p.Email != nil && *p.Email != "" && *p.Email != u.Email {
		u.Email = *p.Email
		changed = true
	}
	if p.Name != nil && *p.Name != "" {
		name := *p.Name
		u.Name = &name
		changed = true
	}
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		avatar := *p.AvatarURL
		u.AvatarURL = &avatar
		changed = true
	}
	return changed
}
