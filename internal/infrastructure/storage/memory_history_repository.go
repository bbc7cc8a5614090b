package storage

import (
	"context"
	"sync"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

// MemoryHistoryRepository in-memory история распознаваний.
// Данные теряются при перезапуске процесса.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	lastID  uint64
	records map[uint64]entity.HistoryRecord
}

// NewMemoryHistoryRepository создаёт пустую историю
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		records: make(map[uint64]entity.HistoryRecord),
	}
}

// Create добавляет запись со следующим по порядку ID
func (r *MemoryHistoryRepository) Create(ctx context.Context, userID, content string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	r.records[r.lastID] = entity.HistoryRecord{
		ID:      r.lastID,
		UserID:  userID,
		Content: content,
	}

	return r.lastID, nil
}

// GetByID возвращает запись или nil, если её нет
func (r *MemoryHistoryRepository) GetByID(ctx context.Context, id uint64) (*entity.HistoryRecord, error) {
	r.mu.RLock()
	record, exists := r.records[id]
	r.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	return &record, nil
}

// Close ничего не делает, нужен для единообразия с остальными хранилищами
func (r *MemoryHistoryRepository) Close() error {
	return nil
}

var _ port.HistoryRepository = (*MemoryHistoryRepository)(nil)
