package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

const (
	historyKeyPrefix   = "history:"
	historySequenceKey = "seq:history"
	// Сколько ID арендуется у badger за раз
	historySequenceBandwidth = 100
)

// badgerRecord значение записи истории на диске
type badgerRecord struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// BadgerHistoryRepository история распознаваний во встроенной базе badger.
// ID выдаются последовательностью badger, поэтому строго возрастают и между перезапусками.
type BadgerHistoryRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerHistoryRepository создаёт хранилище поверх открытой базы
func NewBadgerHistoryRepository(db *badger.DB) (*BadgerHistoryRepository, error) {
	seq, err := db.GetSequence([]byte(historySequenceKey), historySequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("get history sequence: %w", err)
	}
	return &BadgerHistoryRepository{db: db, seq: seq}, nil
}

// OpenBadgerHistoryRepository открывает базу badger в каталоге path
func OpenBadgerHistoryRepository(path string, log *zap.Logger) (*BadgerHistoryRepository, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}

	repo, err := NewBadgerHistoryRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("History storage ready", zap.String("backend", "badger"), zap.String("path", path))
	return repo, nil
}

// Create добавляет запись со следующим ID последовательности
func (r *BadgerHistoryRepository) Create(ctx context.Context, userID, content string) (uint64, error) {
	next, err := r.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next history id: %w", err)
	}
	// Последовательность badger начинается с нуля, а ID записей положительные
	id := next + 1

	value, err := json.Marshal(badgerRecord{UserID: userID, Content: content})
	if err != nil {
		return 0, fmt.Errorf("encode history record: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(id), value)
	})
	if err != nil {
		return 0, fmt.Errorf("store history record: %w", err)
	}

	return id, nil
}

// GetByID возвращает запись или nil, если её нет
func (r *BadgerHistoryRepository) GetByID(ctx context.Context, id uint64) (*entity.HistoryRecord, error) {
	var stored badgerRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(historyKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history record: %w", err)
	}

	return &entity.HistoryRecord{
		ID:      id,
		UserID:  stored.UserID,
		Content: stored.Content,
	}, nil
}

// Close возвращает неиспользованные ID и закрывает базу
func (r *BadgerHistoryRepository) Close() error {
	return errors.Join(r.seq.Release(), r.db.Close())
}

// historyKey ключ записи: префикс и ID в big-endian, чтобы ключи сортировались по ID
func historyKey(id uint64) []byte {
	key := make([]byte, len(historyKeyPrefix)+8)
	copy(key, historyKeyPrefix)
	binary.BigEndian.PutUint64(key[len(historyKeyPrefix):], id)
	return key
}

var _ port.HistoryRepository = (*BadgerHistoryRepository)(nil)
