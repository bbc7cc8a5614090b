//go:generate go run go.uber.org/mock/mockgen -source=history_repository.go -destination=mocks/mock_history_repository.go -package=mocks
package port

import (
	"context"

	"tagger-bot/internal/domain/entity"
)

// HistoryRepository интерфейс хранилища истории распознаваний
type HistoryRepository interface {
	// Create сохраняет результат и возвращает назначенный ему ID
	Create(ctx context.Context, userID, content string) (uint64, error)

	// GetByID возвращает запись по ID или nil, если записи нет
	GetByID(ctx context.Context, id uint64) (*entity.HistoryRecord, error)
}
