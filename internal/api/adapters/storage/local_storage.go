package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	svc "neurolearn/internal/api/ports/services"
	"neurolearn/pkg/logger"
)

// Константы для сообщений logger и ошибок.
const (
	LogImageSaved     = "page image saved"
	LogImageDeleted   = "page image deleted"
	errCtxCreateDir   = "creating upload dir"
	errCtxWriteImage  = "writing page image"
	errCtxDeleteImage = "deleting page image"
)

// ErrForeignURL возвращается при удалении URL, не принадлежащего хранилищу.
var ErrForeignURL = errors.New("url does not belong to this storage")

// LocalImageStorage хранит изображения страниц в каталоге на диске.
type LocalImageStorage struct {
	dir        string
	publicPath string
}

// NewLocalImageStorage создает каталог dir, если его нет.
// publicPath - URL префикс, под которым каталог раздается клиентам.
func NewLocalImageStorage(dir, publicPath string) (*LocalImageStorage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxCreateDir, err)
	}
	return &LocalImageStorage{
		dir:        dir,
		publicPath: strings.TrimRight(publicPath, "/"),
	}, nil
}

var _ svc.ImageStorage = (*LocalImageStorage)(nil)

// Save записывает изображение как note_<owner>_<uuid>.png и возвращает его URL.
func (s *LocalImageStorage) Save(ctx context.Context, ownerID int64, image []byte) (string, error) {
	name := fmt.Sprintf("note_%d_%s.png", ownerID, uuid.NewString())

	if err := os.WriteFile(filepath.Join(s.dir, name), image, 0o600); err != nil {
		logger.Log(ctx).Error(ctx, errCtxWriteImage, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxWriteImage, err)
	}

	url := s.publicPath + "/" + name
	logger.Log(ctx).Debug(ctx, LogImageSaved, zap.String("url", url))
	return url, nil
}

// Delete удаляет изображение по URL. Отсутствующий файл не считается ошибкой.
func (s *LocalImageStorage) Delete(ctx context.Context, url string) error {
	dir, name := path.Split(url)
	if strings.TrimRight(dir, "/") != s.publicPath || name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", errCtxDeleteImage, err)
	}

	logger.Log(ctx).Debug(ctx, LogImageDeleted, zap.String("url", url))
	return nil
}

// Dir возвращает каталог хранилища.
func (s *LocalImageStorage) Dir() string {
	return s.dir
}
