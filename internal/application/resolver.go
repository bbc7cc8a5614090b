package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

// DefaultPromptTimeout окно ожидания изображения после приглашения
const DefaultPromptTimeout = 30 * time.Second

const promptTextFormat = "Please send an image within %d seconds"

// ResolveInput источники изображения в порядке приоритета: вложение, цитата, приглашение
type ResolveInput struct {
	Conversation entity.Conversation
	Attachment   *entity.Element // вложение или аргумент команды
	Quote        *entity.Message // сообщение, на которое ответил пользователь
}

// ImageResolver определяет адрес изображения для распознавания
type ImageResolver struct {
	prompter port.Prompter
	users    *UserService
	timeout  time.Duration
	log      *zap.Logger
}

// NewImageResolver создаёт резолвер; timeout <= 0 заменяется на DefaultPromptTimeout
func NewImageResolver(prompter port.Prompter, users *UserService, timeout time.Duration, log *zap.Logger) *ImageResolver {
	if timeout <= 0 {
		timeout = DefaultPromptTimeout
	}
	return &ImageResolver{
		prompter: prompter,
		users:    users,
		timeout:  timeout,
		log:      log,
	}
}

// Resolve возвращает ровно один адрес изображения, entity.ErrNotAnImage или entity.ErrTimeout
func (r *ImageResolver) Resolve(ctx context.Context, in ResolveInput) (string, error) {
	switch {
	case in.Attachment != nil:
		if in.Attachment.Type != entity.ElementImage || in.Attachment.Src == "" {
			return "", fmt.Errorf("attachment: %w", entity.ErrNotAnImage)
		}
		return in.Attachment.Src, nil
	case in.Quote != nil:
		image, ok := in.Quote.FirstImage()
		if !ok {
			return "", fmt.Errorf("quoted message: %w", entity.ErrNotAnImage)
		}
		return image.Src, nil
	default:
		return r.prompt(ctx, in.Conversation)
	}
}

func (r *ImageResolver) prompt(ctx context.Context, conv entity.Conversation) (string, error) {
	if _, err := r.users.AwaitImage(ctx, conv.UserID, conv.ChatID); err != nil {
		return "", fmt.Errorf("await image: %w", err)
	}

	text := fmt.Sprintf(promptTextFormat, int(r.timeout/time.Second))
	outcome, err := r.prompter.Prompt(ctx, conv, text, r.timeout)

	if _, stateErr := r.users.Resume(ctx, conv.UserID, conv.ChatID); stateErr != nil {
		r.log.Warn("Failed to restore user state", zap.Int64("user_id", conv.UserID), zap.Error(stateErr))
	}

	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	if outcome.TimedOut || outcome.Message == nil {
		return "", entity.ErrTimeout
	}

	image, ok := outcome.Message.FirstImage()
	if !ok {
		return "", fmt.Errorf("prompted message: %w", entity.ErrNotAnImage)
	}
	return image.Src, nil
}
