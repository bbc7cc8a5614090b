package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

// historyRow строка таблицы history_records
type historyRow struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	UserID  string `gorm:"size:64;not null"`
	Content string `gorm:"type:text;not null"`
}

func (historyRow) TableName() string {
	return "history_records"
}

// GormHistoryRepository история распознаваний в PostgreSQL через gorm
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository оборачивает уже открытое соединение gorm
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// OpenPostgresHistoryRepository подключается к PostgreSQL и мигрирует таблицу истории
func OpenPostgresHistoryRepository(dsn string, log *zap.Logger) (*GormHistoryRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)

	repo := NewGormHistoryRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("History storage ready", zap.String("backend", "postgres"))
	return repo, nil
}

// AutoMigrate создаёт или обновляет таблицу истории
func (r *GormHistoryRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&historyRow{}); err != nil {
		return fmt.Errorf("migrate history table: %w", err)
	}
	return nil
}

// Create добавляет запись, ID назначает последовательность PostgreSQL
func (r *GormHistoryRepository) Create(ctx context.Context, userID, content string) (uint64, error) {
	row := historyRow{UserID: userID, Content: content}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("insert history record: %w", err)
	}
	return row.ID, nil
}

// GetByID возвращает запись или nil, если её нет
func (r *GormHistoryRepository) GetByID(ctx context.Context, id uint64) (*entity.HistoryRecord, error) {
	if !storableID(id) {
		return nil, nil
	}

	var row historyRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("select history record: %w", err)
	}

	return &entity.HistoryRecord{
		ID:      row.ID,
		UserID:  row.UserID,
		Content: row.Content,
	}, nil
}

// Close закрывает пул соединений
func (r *GormHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ port.HistoryRepository = (*GormHistoryRepository)(nil)
