package storage

import (
	"context"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"tagger-bot/internal/domain/port"
)

// Названия бэкендов истории
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// storableID проверяет, что идентификатор помещается в знаковый BIGINT
func storableID(id uint64) bool {
	return id <= math.MaxInt64
}

// HistoryStore хранилище истории, которое нужно закрыть при остановке
type HistoryStore interface {
	port.HistoryRepository
	io.Closer
}

// OpenHistory открывает хранилище истории выбранного бэкенда
func OpenHistory(ctx context.Context, backend, dsn string, log *zap.Logger) (HistoryStore, error) {
	var (
		store HistoryStore
		err   error
	)

	switch backend {
	case BackendMemory:
		log.Info("History storage ready", zap.String("backend", backend))
		return NewMemoryHistoryRepository(), nil
	case BackendSQLite:
		store, err = asStore(OpenSQLHistoryRepository(ctx, DialectSQLite, dsn, log))
	case BackendMySQL:
		store, err = asStore(OpenSQLHistoryRepository(ctx, DialectMySQL, dsn, log))
	case BackendPostgres:
		store, err = asStore(OpenPostgresHistoryRepository(dsn, log))
	case BackendBadger:
		store, err = asStore(OpenBadgerHistoryRepository(dsn, log))
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}

	if err != nil {
		return nil, fmt.Errorf("open %s history: %w", backend, err)
	}
	return store, nil
}

// asStore не даёт типизированному nil попасть в интерфейс
func asStore[T HistoryStore](store T, err error) (HistoryStore, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}
