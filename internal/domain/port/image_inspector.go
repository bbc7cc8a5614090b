package port

import (
	"context"

	"tagger-bot/internal/domain/entity"
)

// ImageInspector проверяет, что скачанные данные являются изображением
type ImageInspector interface {
	// Inspect возвращает сведения об изображении или ошибку entity.ErrNotAnImage
	Inspect(ctx context.Context, data []byte) (*entity.ImageInfo, error)
}
