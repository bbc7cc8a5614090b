//go:generate go run go.uber.org/mock/mockgen -source=tagger.go -destination=mocks/mock_tagger.go -package=mocks
package port

import (
	"context"

	"tagger-bot/internal/domain/entity"
)

// Tagger интерфейс удалённого тэггера изображений
type Tagger interface {
	// Tag скачивает изображение, отправляет его на разметку и возвращает результат
	Tag(ctx context.Context, req entity.TaggingRequest) (*entity.TaggingResult, error)
}
