package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

const (
	recognizingText   = "Recognizing, please wait..."
	historyFailedText = "The result could not be saved to history."
)

// TaggingService сценарий распознавания: изображение -> тэггер -> текст -> история
type TaggingService struct {
	users     *UserService
	resolver  *ImageResolver
	tagger    port.Tagger
	history   port.HistoryRepository
	messenger port.Messenger
	settings  entity.TaggerSettings
	log       *zap.Logger
}

// NewTaggingService создаёт сервис распознавания. history == nil отключает историю.
func NewTaggingService(
	users *UserService,
	resolver *ImageResolver,
	tagger port.Tagger,
	history port.HistoryRepository,
	messenger port.Messenger,
	settings entity.TaggerSettings,
	log *zap.Logger,
) *TaggingService {
	return &TaggingService{
		users:     users,
		resolver:  resolver,
		tagger:    tagger,
		history:   history,
		messenger: messenger,
		settings:  settings,
		log:       log,
	}
}

// HistoryEnabled сообщает, сохраняются ли результаты
func (s *TaggingService) HistoryEnabled() bool {
	return s.history != nil
}

// Recognize распознаёт изображение и возвращает текст ответа.
// Если история включена, к тексту добавляется ID записи.
func (s *TaggingService) Recognize(ctx context.Context, in ResolveInput) (string, error) {
	conv := in.Conversation
	log := s.log.With(zap.Int64("user_id", conv.UserID), zap.Int64("chat_id", conv.ChatID))

	if err := s.users.Begin(ctx, conv.UserID, conv.ChatID); err != nil {
		return "", err
	}
	defer func() {
		if err := s.users.Finish(context.WithoutCancel(ctx), conv.UserID); err != nil {
			log.Warn("Failed to reset user state", zap.Error(err))
		}
	}()

	imageURL, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		return "", fmt.Errorf("resolve image: %w", err)
	}

	if err := s.messenger.Send(ctx, conv, recognizingText); err != nil {
		log.Warn("Failed to send progress message", zap.Error(err))
	}

	started := time.Now()
	result, err := s.tagger.Tag(ctx, s.settings.NewRequest(imageURL))
	if err != nil {
		return "", fmt.Errorf("tag image: %w", err)
	}
	log.Debug("Image recognized", zap.Duration("duration", time.Since(started)))

	text := FormatResult(*result)
	if s.history == nil {
		return text, nil
	}

	id, err := s.history.Create(ctx, strconv.FormatInt(conv.UserID, 10), text)
	if err != nil {
		log.Error("Failed to save result to history", zap.Error(err))
		return text + "\n\n" + historyFailedText, nil
	}

	log.Info("Result saved to history", zap.Uint64("history_id", id))
	return fmt.Sprintf("%s\n\nHistory ID: %d", text, id), nil
}

// ViewResult возвращает сохранённый результат или nil, если записи нет
func (s *TaggingService) ViewResult(ctx context.Context, id uint64) (*entity.HistoryRecord, error) {
	if s.history == nil {
		return nil, entity.ErrHistoryDisabled
	}

	record, err := s.history.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get history record %d: %w", id, err)
	}
	return record, nil
}
