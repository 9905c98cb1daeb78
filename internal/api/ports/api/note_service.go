package api

import (
	"context"
	"encoding/json"

	"neurolearn/internal/api/domain/entities"
)

// CreateNoteInput - параметры создания заметки. Document - содержимое PDF или nil.
type CreateNoteInput struct {
	Title          string
	BackgroundType string
	Document       []byte
}

// NoteUseCase определяет операции над заметками и страницами.
type NoteUseCase interface {
	CreateNote(ctx context.Context, ownerID int64, input CreateNoteInput) (*entities.Note, error)

	ListNotes(ctx context.Context, ownerID int64) ([]*entities.Note, error)

	GetNote(ctx context.Context, ownerID, noteID int64) (*entities.Note, error)

	UpdatePageOverlay(ctx context.Context, ownerID, pageID int64, overlay json.RawMessage) (*entities.Page, error)
}
