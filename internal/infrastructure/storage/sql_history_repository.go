package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

// Dialect диалект SQL-базы истории
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

var historySchema = map[Dialect]string{
	DialectSQLite: `
	CREATE TABLE IF NOT EXISTS history_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL
	)`,
	DialectMySQL: `
	CREATE TABLE IF NOT EXISTS history_records (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		content TEXT NOT NULL
	) DEFAULT CHARSET = utf8mb4`,
}

// SQLHistoryRepository история распознаваний в SQLite или MySQL
type SQLHistoryRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLHistoryRepository оборачивает уже открытое соединение
func NewSQLHistoryRepository(db *sql.DB, log *zap.Logger) *SQLHistoryRepository {
	return &SQLHistoryRepository{db: db, log: log}
}

// OpenSQLHistoryRepository открывает базу и создаёт таблицу истории
func OpenSQLHistoryRepository(ctx context.Context, dialect Dialect, dsn string, log *zap.Logger) (*SQLHistoryRepository, error) {
	db, err := openSQL(dialect, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	repo := NewSQLHistoryRepository(db, log)
	if err := repo.Migrate(ctx, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("History storage ready", zap.String("backend", string(dialect)))
	return repo, nil
}

func openSQL(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case DialectSQLite:
		// WAL и busy_timeout задаются через DSN, чтобы действовать на все соединения пула
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		return db, nil

	case DialectMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db := sql.OpenDB(connector)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
}

// Migrate создаёт таблицу истории, если её нет
func (r *SQLHistoryRepository) Migrate(ctx context.Context, dialect Dialect) error {
	schema, ok := historySchema[dialect]
	if !ok {
		return fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Create добавляет запись, ID назначает автоинкремент базы
func (r *SQLHistoryRepository) Create(ctx context.Context, userID, content string) (uint64, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO history_records (user_id, content) VALUES (?, ?)",
		userID, content,
	)
	if err != nil {
		return 0, fmt.Errorf("insert history record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("unexpected history record id %d", id)
	}

	return uint64(id), nil
}

// GetByID возвращает запись или nil, если её нет
func (r *SQLHistoryRepository) GetByID(ctx context.Context, id uint64) (*entity.HistoryRecord, error) {
	if !storableID(id) {
		return nil, nil
	}

	var record entity.HistoryRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, content FROM history_records WHERE id = ?",
		int64(id),
	).Scan(&record.ID, &record.UserID, &record.Content)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select history record: %w", err)
	}

	return &record, nil
}

// Close закрывает соединение с базой
func (r *SQLHistoryRepository) Close() error {
	return r.db.Close()
}

var _ port.HistoryRepository = (*SQLHistoryRepository)(nil)
