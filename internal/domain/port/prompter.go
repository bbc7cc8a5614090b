//go:generate go run go.uber.org/mock/mockgen -source=prompter.go -destination=mocks/mock_prompter.go -package=mocks
package port

import (
	"context"
	"time"

	"tagger-bot/internal/domain/entity"
)

// Messenger отправляет текстовые сообщения в чат
type Messenger interface {
	Send(ctx context.Context, conv entity.Conversation, text string) error
}

// Prompter просит пользователя прислать сообщение и ждёт его ограниченное время
type Prompter interface {
	// Prompt отправляет приглашение и ждёт следующего сообщения пользователя.
	// Истечение времени ожидания не является ошибкой: возвращается entity.TimedOut().
	Prompt(ctx context.Context, conv entity.Conversation, text string, timeout time.Duration) (entity.PromptOutcome, error)
}
