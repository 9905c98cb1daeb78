package services

import "context"

// Rasterizer превращает PDF документ в PNG изображения страниц по порядку.
type Rasterizer interface {
	Rasterize(ctx context.Context, document []byte) ([][]byte, error)
}

// ImageStorage сохраняет изображения страниц и возвращает их публичные URL.
type ImageStorage interface {
	Save(ctx context.Context, ownerID int64, image []byte) (string, error)

	// Delete удаляет ранее сохраненное изображение по его URL.
	Delete(ctx context.Context, url string) error
}
