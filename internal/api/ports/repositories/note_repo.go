package repositories

import (
	"context"
	"encoding/json"

	"neurolearn/internal/api/domain/entities"
)

// NoteRepository определяет операции хранения заметок и страниц.
type NoteRepository interface {
	// CreateWithPages атомарно сохраняет заметку и все ее страницы.
	CreateWithPages(ctx context.Context, note *entities.Note) (*entities.Note, error)

	// ListByOwner возвращает заметки владельца, новые первыми, со страницами.
	ListByOwner(ctx context.Context, ownerID int64) ([]*entities.Note, error)

	// FindByID возвращает заметку со страницами без проверки владельца.
	FindByID(ctx context.Context, id int64) (*entities.Note, error)

	// UpdatePageOverlay заменяет оверлей страницы, принадлежащей ownerID.
	UpdatePageOverlay(ctx context.Context, ownerID, pageID int64, overlay json.RawMessage) (*entities.Page, error)
}
