package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
	"neurolearn/internal/api/ports/api"
	"neurolearn/internal/api/ports/repositories"
	svc "neurolearn/internal/api/ports/services"
	"neurolearn/pkg/logger"
)

const (
	methodCreateNote        = "CreateNote"
	methodListNotes         = "ListNotes"
	methodGetNote           = "GetNote"
	methodUpdatePageOverlay = "UpdatePageOverlay"

	msgCreatingNote      = "creating note"
	msgNoteCreated       = "note created"
	msgForeignNote       = "access to foreign note"
	msgOverlayUpdated    = "page overlay updated"
	msgErrRender         = "failed to render document"
	msgErrStoreImage     = "failed to store page image"
	msgErrPersistNote    = "failed to persist note"
	msgErrCleanupImage   = "failed to remove orphaned page image"
	msgErrListNotes      = "failed to list notes"
	msgErrFetchNote      = "failed to fetch note"
	msgErrUpdateOverlay  = "failed to update overlay"
	errCtxValidatingNote = "validating note"
	errCtxRendering      = "rendering document"
	errCtxStoringImages  = "storing page images"
	errCtxPersistingNote = "persisting note"
	errCtxListingNotes   = "listing notes"
	errCtxFetchingNote   = "fetching note"
	errCtxUpdatingPage   = "updating page overlay"
)

// NoteUseCaseImpl реализует интерфейс NoteUseCase.
type NoteUseCaseImpl struct {
	noteRepo   repositories.NoteRepository
	rasterizer svc.Rasterizer
	images     svc.ImageStorage
}

// NewNoteUseCase создает use case заметок.
func NewNoteUseCase(
	noteRepo repositories.NoteRepository,
	rasterizer svc.Rasterizer,
	images svc.ImageStorage,
) api.NoteUseCase {
	return &NoteUseCaseImpl{
		noteRepo:   noteRepo,
		rasterizer: rasterizer,
		images:     images,
	}
}

// CreateNote создает заметку. С документом каждая его страница становится
// image-страницей, без документа создается одна пустая страница.
func (n *NoteUseCaseImpl) CreateNote(ctx context.Context, ownerID int64, input api.CreateNoteInput) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateNote), zap.Int64("ownerID", ownerID))
	log.Debug(ctx, msgCreatingNote, zap.Bool("with_document", len(input.Document) > 0))

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingNote, services.ErrEmptyTitle)
	}

	note := &entities.Note{Title: title, OwnerID: ownerID}
	var stored []string

	if len(input.Document) > 0 {
		urls, err := n.renderDocument(ctx, ownerID, input.Document)
		if err != nil {
			return nil, err
		}
		stored = urls
		note.Pages = entities.NewImagePages(urls)
	} else {
		background := entities.BackgroundType(input.BackgroundType)
		if background == "" {
			background = entities.BackgroundPlain
		}
		if !background.Valid() || background == entities.BackgroundImage {
			return nil, fmt.Errorf("%s: %w: %q", errCtxValidatingNote, services.ErrInvalidBackgroundType, background)
		}
		note.Pages = []entities.Page{entities.NewBlankPage(background)}
	}

	created, err := n.noteRepo.CreateWithPages(ctx, note)
	if err != nil {
		log.Error(ctx, msgErrPersistNote, zap.Error(err))
		n.cleanup(ctx, stored)
		return nil, fmt.Errorf("%s: %w: %w", errCtxPersistingNote, services.ErrNoteCreationFailed, err)
	}

	log.Info(ctx, msgNoteCreated, zap.Int64("noteID", created.ID), zap.Int("pages", len(created.Pages)))
	return created, nil
}

// renderDocument растеризует документ и сохраняет изображения страниц.
// При ошибке уже сохраненные изображения удаляются.
func (n *NoteUseCaseImpl) renderDocument(ctx context.Context, ownerID int64, document []byte) ([]string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateNote), zap.Int64("ownerID", ownerID))

	images, err := n.rasterizer.Rasterize(ctx, document)
	if err != nil {
		log.Warn(ctx, msgErrRender, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxRendering, services.ErrNoteCreationFailed, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%s: %w: %w", errCtxRendering, services.ErrNoteCreationFailed, services.ErrEmptyDocument)
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := n.images.Save(ctx, ownerID, img)
		if err != nil {
			log.Error(ctx, msgErrStoreImage, zap.Error(err))
			n.cleanup(ctx, urls)
			return nil, fmt.Errorf("%s: %w: %w", errCtxStoringImages, services.ErrNoteCreationFailed, err)
		}
		urls = append(urls, url)
	}

	return urls, nil
}

func (n *NoteUseCaseImpl) cleanup(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := n.images.Delete(ctx, url); err != nil {
			logger.Log(ctx).Warn(ctx, msgErrCleanupImage, zap.String("url", url), zap.Error(err))
		}
	}
}

// ListNotes возвращает заметки владельца от новых к старым.
func (n *NoteUseCaseImpl) ListNotes(ctx context.Context, ownerID int64) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListNotes), zap.Int64("ownerID", ownerID))

	notes, err := n.noteRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error(ctx, msgErrListNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListingNotes, err)
	}

	return notes, nil
}

// GetNote возвращает заметку владельца. Чужая заметка дает ErrForbidden.
func (n *NoteUseCaseImpl) GetNote(ctx context.Context, ownerID, noteID int64) (*entities.Note, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodGetNote),
		zap.Int64("ownerID", ownerID),
		zap.Int64("noteID", noteID),
	)

	note, err := n.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		if !errors.Is(err, entities.ErrNoteNotFound) {
			log.Error(ctx, msgErrFetchNote, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxFetchingNote, err)
	}

	if note.OwnerID != ownerID {
		log.Warn(ctx, msgForeignNote)
		return nil, services.ErrForbidden
	}

	return note, nil
}

// UpdatePageOverlay сохраняет оверлей страницы как есть. Допустим любой валидный JSON, кроме null.
func (n *NoteUseCaseImpl) UpdatePageOverlay(
	ctx context.Context,
	ownerID, pageID int64,
	overlay json.RawMessage,
) (*entities.Page, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodUpdatePageOverlay),
		zap.Int64("ownerID", ownerID),
		zap.Int64("pageID", pageID),
	)

	if len(overlay) == 0 || !json.Valid(overlay) || bytes.Equal(bytes.TrimSpace(overlay), []byte("null")) {
		return nil, services.ErrInvalidOverlay
	}

	page, err := n.noteRepo.UpdatePageOverlay(ctx, ownerID, pageID, overlay)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			log.Warn(ctx, msgForeignNote)
		case !errors.Is(err, entities.ErrPageNotFound):
			log.Error(ctx, msgErrUpdateOverlay, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingPage, err)
	}

	log.Debug(ctx, msgOverlayUpdated)
	return page, nil
}
