// Package dto содержит объекты передачи данных HTTP API.
package dto

import (
	"encoding/json"
	"time"

	"neurolearn/internal/api/domain/entities"
)

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse - ответ на успешный вход.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse содержит данные профиля пользователя.
type UserResponse struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Provider  string  `json:"provider"`
}

// UpdateUserRequest - частичное обновление профиля.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// PageResponse содержит данные страницы.
type PageResponse struct {
	ID             int64           `json:"id"`
	PageNumber     int             `json:"page_number"`
	BackgroundType string          `json:"background_type"`
	BackgroundURL  *string         `json:"background_url"`
	OverlayData    json.RawMessage `json:"overlay_data"`
}

// NoteResponse содержит заметку со страницами.
type NoteResponse struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	Pages     []PageResponse `json:"pages"`
}

// OverlayUpdateRequest - тело PATCH /notes/pages/:page_id.
type OverlayUpdateRequest struct {
	OverlayData json.RawMessage `json:"overlay_data"`
}

// ToProfileUpdate переводит запрос в доменное обновление.
func (r UpdateUserRequest) ToProfileUpdate() entities.ProfileUpdate {
	return entities.ProfileUpdate{
		Email:     r.Email,
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
	}
}

// NewUserResponse строит ответ из пользователя.
func NewUserResponse(u *entities.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Provider:  string(u.Provider),
	}
}

// NewPageResponse строит ответ из страницы. Пустой оверлей отдается как {}.
func NewPageResponse(p *entities.Page) PageResponse {
	overlay := p.OverlayData
	if len(overlay) == 0 {
		overlay = entities.EmptyOverlay
	}
	return PageResponse{
		ID:             p.ID,
		PageNumber:     p.PageNumber,
		BackgroundType: string(p.BackgroundType),
		BackgroundURL:  p.BackgroundURL,
		OverlayData:    overlay,
	}
}

// NewNoteResponse строит ответ из заметки.
func NewNoteResponse(n *entities.Note) NoteResponse {
	pages := make([]PageResponse, 0, len(n.Pages))
	for i := range n.Pages {
		pages = append(pages, NewPageResponse(&n.Pages[i]))
	}
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		CreatedAt: n.CreatedAt,
		Pages:     pages,
	}
}

// NewNoteList строит список заметок.
func NewNoteList(notes []*entities.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NewNoteResponse(n))
	}
	return out
}
