// Package storage содержит рендеринг PDF в изображения и файловое хранилище страниц.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"neurolearn/internal/api/domain/services"
	svc "neurolearn/internal/api/ports/services"
	"neurolearn/pkg/logger"
)

const (
	methodRasterize     = "Rasterize"
	msgRasterizing      = "rasterizing document"
	msgRasterized       = "document rasterized"
	errCtxTempDir       = "creating temp dir"
	errCtxWriteDocument = "writing document"
	errCtxRunPdftoppm   = "running pdftoppm"
	errCtxReadPage      = "reading rendered page"

	outputPrefix  = "page"
	defaultDPI    = 150
	maxStderrSize = 512
)

// PdftoppmRasterizer рендерит PDF через утилиту pdftoppm из poppler-utils.
type PdftoppmRasterizer struct {
	binary string
	dpi    int
}

// NewPdftoppmRasterizer создает растеризатор. Пустой binary означает "pdftoppm" из PATH.
func NewPdftoppmRasterizer(binary string, dpi int) *PdftoppmRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &PdftoppmRasterizer{binary: binary, dpi: dpi}
}

var _ svc.Rasterizer = (*PdftoppmRasterizer)(nil)

// Rasterize возвращает PNG изображения страниц документа по порядку.
func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, document []byte) ([][]byte, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRasterize))
	log.Debug(ctx, msgRasterizing, zap.Int("bytes", len(document)))

	if len(document) == 0 {
		return nil, services.ErrEmptyDocument
	}

	dir, err := os.MkdirTemp("", "neurolearn-render-*")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtxTempDir, services.ErrRenderFailed, err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(input, document, 0o600); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtxWriteDocument, services.ErrRenderFailed, err)
	}

	var stderr bytes.Buffer
	// #nosec G204
	cmd := exec.CommandContext(ctx, r.binary, "-png", "-r", strconv.Itoa(r.dpi), input, filepath.Join(dir, outputPrefix))
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderrSize {
			msg = msg[:maxStderrSize]
		}
		log.Warn(ctx, errCtxRunPdftoppm, zap.Error(err), zap.String("stderr", msg))
		return nil, fmt.Errorf("%s: %w: %w", errCtxRunPdftoppm, services.ErrRenderFailed, err)
	}

	files, err := renderedPages(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtxReadPage, services.ErrRenderFailed, err)
	}
	if len(files) == 0 {
		return nil, services.ErrEmptyDocument
	}

	images := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", errCtxReadPage, services.ErrRenderFailed, err)
		}
		images = append(images, data)
	}

	log.Debug(ctx, msgRasterized, zap.Int("pages", len(images)))
	return images, nil
}

// renderedPages возвращает файлы page-N.png, упорядоченные по N.
// pdftoppm дополняет N нулями в зависимости от числа страниц.
func renderedPages(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, outputPrefix+"-*.png"))
	if err != nil {
		return nil, err
	}

	type numbered struct {
		n    int
		path string
	}
	pages := make([]numbered, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		n, err := strconv.Atoi(strings.TrimPrefix(base, outputPrefix+"-"))
		if err != nil {
			return nil, errors.New("unexpected output file " + filepath.Base(m))
		}
		pages = append(pages, numbered{n: n, path: m})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
