package services

import (
	"errors"
)

// Ошибки домена заметок.
var (
	ErrForbidden             = errors.New("not authorized to access this note")
	ErrNoteCreationFailed    = errors.New("note creation failed")
	ErrEmptyTitle            = errors.New("title is required")
	ErrInvalidBackgroundType = errors.New("invalid background type")
	ErrInvalidOverlay        = errors.New("overlay data must be valid JSON")
	ErrRenderFailed          = errors.New("failed to render document")
	ErrEmptyDocument         = errors.New("document has no pages")
)
