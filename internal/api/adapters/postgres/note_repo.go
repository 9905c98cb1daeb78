package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"neurolearn/internal/api/domain/entities"
	"neurolearn/internal/api/domain/services"
	"neurolearn/internal/api/ports/repositories"
	"neurolearn/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogNoteCreated      = "note created"
	LogNoteNotFound     = "note not found"
	LogPageNotFound     = "page not found"
	LogForeignPage      = "page belongs to another owner"
	LogRollbackFailed   = "transaction rollback failed"
	errCtxBeginTx       = "begin transaction"
	errCtxInsertNote    = "insert note"
	errCtxInsertPage    = "insert page"
	errCtxCommitTx      = "commit transaction"
	errCtxQueryNotes    = "query notes"
	errCtxQueryPages    = "query pages"
	errCtxUpdateOverlay = "update page overlay"
	errCtxPageOwner     = "query page owner"
)

const pageColumns = `id, note_id, page_number, content, background_type, background_url, overlay_data`

// NoteRepository реализует repositories.NoteRepository для Postgres.
type NoteRepository struct {
	pool PgxPoolInterface
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool PgxPoolInterface) repositories.NoteRepository {
	return &NoteRepository{pool: pool}
}

func scanPage(row pgx.Row) (*entities.Page, error) {
	var (
		page       entities.Page
		background string
		overlay    []byte
	)
	err := row.Scan(
		&page.ID,
		&page.NoteID,
		&page.PageNumber,
		&page.Content,
		&background,
		&page.BackgroundURL,
		&overlay,
	)
	if err != nil {
		return nil, err
	}
	page.BackgroundType = entities.BackgroundType(background)
	page.OverlayData = json.RawMessage(overlay)
	if len(page.OverlayData) == 0 {
		page.OverlayData = entities.EmptyOverlay
	}
	return &page, nil
}

func overlayParam(overlay json.RawMessage) string {
	if len(overlay) == 0 {
		return string(entities.EmptyOverlay)
	}
	return string(overlay)
}

// CreateWithPages сохраняет заметку и страницы в одной транзакции.
// При любой ошибке транзакция откатывается и в базе не остается ничего.
func (r *NoteRepository) CreateWithPages(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "CreateWithPages"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, errCtxBeginTx, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxBeginTx, err)
	}

	created, err := insertNoteWithPages(ctx, tx, note)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error(ctx, LogRollbackFailed, zap.Error(rbErr))
		}
		log.Error(ctx, "error creating note", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, errCtxCommitTx, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCommitTx, err)
	}

	log.Debug(ctx, LogNoteCreated, zap.Int64("note_id", created.ID), zap.Int("pages", len(created.Pages)))
	return created, nil
}

func insertNoteWithPages(ctx context.Context, tx pgx.Tx, note *entities.Note) (*entities.Note, error) {
	created := &entities.Note{
		Title:   note.Title,
		OwnerID: note.OwnerID,
	}

	err := tx.QueryRow(ctx, `
        INSERT INTO notes (title, owner_id)
        VALUES ($1, $2)
        RETURNING id, created_at`,
		note.Title, note.OwnerID,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxInsertNote, err)
	}

	created.Pages = make([]entities.Page, 0, len(note.Pages))
	for _, p := range note.Pages {
		page, err := scanPage(tx.QueryRow(ctx, `
            INSERT INTO pages (note_id, page_number, content, background_type, background_url, overlay_data)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING `+pageColumns,
			created.ID,
			p.PageNumber,
			p.Content,
			string(p.BackgroundType),
			p.BackgroundURL,
			overlayParam(p.OverlayData),
		))
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", errCtxInsertPage, p.PageNumber, err)
		}
		created.Pages = append(created.Pages, *page)
	}

	return created, nil
}

// ListByOwner возвращает заметки владельца от новых к старым вместе со страницами.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "ListByOwner"))

	rows, err := r.pool.Query(ctx, `
        SELECT id, title, owner_id, created_at
        FROM notes
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		log.Error(ctx, errCtxQueryNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxQueryNotes, err)
	}

	notes := make([]*entities.Note, 0)
	byID := make(map[int64]*entities.Note)
	ids := make([]int64, 0)
	for rows.Next() {
		var note entities.Note
		if err := rows.Scan(&note.ID, &note.Title, &note.OwnerID, &note.CreatedAt); err != nil {
			rows.Close()
			log.Error(ctx, errCtxQueryNotes, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxQueryNotes, err)
		}
		note.Pages = []entities.Page{}
		notes = append(notes, &note)
		byID[note.ID] = &note
		ids = append(ids, note.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		log.Error(ctx, errCtxQueryNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxQueryNotes, err)
	}

	if len(ids) == 0 {
		return notes, nil
	}

	pages, err := r.pagesFor(ctx, ids)
	if err != nil {
		log.Error(ctx, errCtxQueryPages, zap.Error(err))
		return nil, err
	}
	for _, page := range pages {
		if note, ok := byID[page.NoteID]; ok {
			note.Pages = append(note.Pages, page)
		}
	}

	return notes, nil
}

// FindByID возвращает заметку со страницами без проверки владельца.
func (r *NoteRepository) FindByID(ctx context.Context, id int64) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "FindByID"))

	var note entities.Note
	err := r.pool.QueryRow(ctx, `
        SELECT id, title, owner_id, created_at
        FROM notes
        WHERE id = $1`, id,
	).Scan(&note.ID, &note.Title, &note.OwnerID, &note.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, LogNoteNotFound, zap.Int64("id", id))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, errCtxQueryNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxQueryNotes, err)
	}

	pages, err := r.pagesFor(ctx, []int64{note.ID})
	if err != nil {
		log.Error(ctx, errCtxQueryPages, zap.Error(err))
		return nil, err
	}
	note.Pages = pages

	return &note, nil
}

// pagesFor загружает страницы заметок, упорядоченные по заметке и номеру.
func (r *NoteRepository) pagesFor(ctx context.Context, noteIDs []int64) ([]entities.Page, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+pageColumns+`
        FROM pages
        WHERE note_id = ANY($1)
        ORDER BY note_id, page_number`, noteIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxQueryPages, err)
	}
	defer rows.Close()

	pages := make([]entities.Page, 0)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxQueryPages, err)
		}
		pages = append(pages, *page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxQueryPages, err)
	}

	return pages, nil
}

// UpdatePageOverlay заменяет оверлей страницы, если ее заметка принадлежит ownerID.
func (r *NoteRepository) UpdatePageOverlay(
	ctx context.Context,
	ownerID, pageID int64,
	overlay json.RawMessage,
) (*entities.Page, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "UpdatePageOverlay"))

	page, err := scanPage(r.pool.QueryRow(ctx, `
        UPDATE pages AS p
        SET overlay_data = $3
        FROM notes AS n
        WHERE p.id = $1 AND p.note_id = n.id AND n.owner_id = $2
        RETURNING p.id, p.note_id, p.page_number, p.content, p.background_type, p.background_url, p.overlay_data`,
		pageID, ownerID, overlayParam(overlay),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missingPage(ctx, log, pageID)
		}
		log.Error(ctx, errCtxUpdateOverlay, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdateOverlay, err)
	}

	return page, nil
}

// missingPage различает отсутствующую страницу и страницу чужой заметки.
func (r *NoteRepository) missingPage(ctx context.Context, log *logger.Logger, pageID int64) error {
	var owner int64
	err := r.pool.QueryRow(ctx, `
        SELECT n.owner_id
        FROM pages AS p
        JOIN notes AS n ON n.id = p.note_id
        WHERE p.id = $1`,
		pageID,
	).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debug(ctx, LogPageNotFound, zap.Int64("page_id", pageID))
		return entities.ErrPageNotFound
	}
	if err != nil {
		log.Error(ctx, errCtxPageOwner, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxPageOwner, err)
	}

	log.Debug(ctx, LogForeignPage, zap.Int64("page_id", pageID), zap.Int64("owner_id", owner))
	return services.ErrForbidden
}
