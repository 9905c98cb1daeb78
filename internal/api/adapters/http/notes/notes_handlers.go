// Package notes содержит HTTP обработчики заметок и страниц.
package notes

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"neurolearn/internal/api/adapters/http/dto"
	"neurolearn/internal/api/adapters/http/middleware"
	"neurolearn/internal/api/adapters/http/response"
	"neurolearn/internal/api/ports/api"
	"neurolearn/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerList          = "notes handler: list"
	LogHandlerGet           = "notes handler: get"
	LogHandlerCreate        = "notes handler: create"
	LogHandlerUpdateOverlay = "notes handler: update overlay"

	ErrorInvalidRequest       = "invalid request"
	ErrorReadUpload           = "failed to read uploaded file"
	ErrorEmptyUpload          = "uploaded file is empty"
	ErrorFailedToServeRequest = "failed to serve request"

	detailInvalidID   = "Invalid identifier"
	detailEmptyUpload = "Uploaded file is empty"
)

// Handler содержит HTTP обработчики заметок.
type Handler struct {
	notes api.NoteUseCase
}

// NewHandler создает обработчик заметок.
func NewHandler(notes api.NoteUseCase) *Handler {
	return &Handler{notes: notes}
}

// List возвращает заметки текущего пользователя.
func (h *Handler) List(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerList)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
	}

	notes, err := h.notes.ListNotes(requestCtx, current.ID)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	if err := ctx.JSON(dto.NewNoteList(notes)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Get возвращает одну заметку владельца.
func (h *Handler) Get(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerGet)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
	}

	noteID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return response.Detail(ctx, fiber.StatusUnprocessableEntity, detailInvalidID)
	}

	note, err := h.notes.GetNote(requestCtx, current.ID, noteID)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	if err := ctx.JSON(dto.NewNoteResponse(note)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Create создает заметку из multipart формы: title, back_type и необязательный file.
func (h *Handler) Create(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerCreate)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
	}

	input := api.CreateNoteInput{
		Title:          ctx.FormValue("title"),
		BackgroundType: ctx.FormValue("back_type"),
	}

	if header, err := ctx.FormFile("file"); err == nil && header != nil {
		document, readErr := readUpload(header)
		if readErr != nil {
			log.Warn(requestCtx, ErrorReadUpload, zap.Error(readErr))
			return response.Detail(ctx, fiber.StatusBadRequest, response.DetailInvalidRequest)
		}
		if len(document) == 0 {
			log.Debug(requestCtx, ErrorEmptyUpload, zap.String("filename", header.Filename))
			return response.Detail(ctx, fiber.StatusBadRequest, detailEmptyUpload)
		}
		input.Document = document
	}

	note, err := h.notes.CreateNote(requestCtx, current.ID, input)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	if err := ctx.JSON(dto.NewNoteResponse(note)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// UpdateOverlay заменяет overlay_data страницы.
func (h *Handler) UpdateOverlay(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerUpdateOverlay)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return response.Detail(ctx, fiber.StatusUnauthorized, response.DetailInvalidToken)
	}

	pageID, err := strconv.ParseInt(ctx.Params("page_id"), 10, 64)
	if err != nil {
		return response.Detail(ctx, fiber.StatusUnprocessableEntity, detailInvalidID)
	}

	var req dto.OverlayUpdateRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return response.Detail(ctx, fiber.StatusBadRequest, response.DetailInvalidOverlay)
	}

	page, err := h.notes.UpdatePageOverlay(requestCtx, current.ID, pageID, req.OverlayData)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	if err := ctx.JSON(dto.NewPageResponse(page)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
