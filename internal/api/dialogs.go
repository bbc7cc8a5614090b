package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

// sender часть BotAPI, нужная для отправки сообщений
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Dialogs отправляет сообщения и ждёт ответов пользователей.
// Ожидающий ответа пользователь получает своё следующее сообщение в чате через Deliver.
type Dialogs struct {
	sender  sender
	convert func(*tgbotapi.Message) entity.Message

	mu      sync.Mutex
	waiters map[entity.Conversation]*waiter
}

// waiter ожидание ответа; принимает ровно одно сообщение
type waiter struct {
	ch        chan *tgbotapi.Message
	delivered bool
}

var (
	_ port.Prompter  = (*Dialogs)(nil)
	_ port.Messenger = (*Dialogs)(nil)
)

func newDialogs(s sender, convert func(*tgbotapi.Message) entity.Message) *Dialogs {
	return &Dialogs{
		sender:  s,
		convert: convert,
		waiters: make(map[entity.Conversation]*waiter),
	}
}

// Send отправляет текст в чат
func (d *Dialogs) Send(ctx context.Context, conv entity.Conversation, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.sender.Send(tgbotapi.NewMessage(conv.ChatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Prompt отправляет приглашение и ждёт следующего сообщения пользователя в этом чате
func (d *Dialogs) Prompt(ctx context.Context, conv entity.Conversation, text string, timeout time.Duration) (entity.PromptOutcome, error) {
	// Ожидание регистрируется до отправки, чтобы не потерять быстрый ответ
	w := d.register(conv)

	if err := d.Send(ctx, conv, text); err != nil {
		d.unregister(conv, w)
		return entity.PromptOutcome{}, fmt.Errorf("prompt: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.ch:
		d.unregister(conv, w)
		return entity.Received(d.convert(msg)), nil
	case <-timer.C:
		// Сообщение, принятое Deliver до снятия ожидания, считается ответом
		if msg := d.unregister(conv, w); msg != nil {
			return entity.Received(d.convert(msg)), nil
		}
		return entity.TimedOut(), nil
	case <-ctx.Done():
		d.unregister(conv, w)
		return entity.PromptOutcome{}, ctx.Err()
	}
}

// waiting сообщает, ждёт ли пользователь ответа в этом чате
func (d *Dialogs) waiting(conv entity.Conversation) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.waiters[conv]
	return ok
}

// Deliver передаёт сообщение ожидающему; false, если никто не ждёт
func (d *Dialogs) Deliver(conv entity.Conversation, msg *tgbotapi.Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.waiters[conv]
	if !ok || w.delivered {
		// Ответ уже получен, остальные сообщения обрабатываются как обычно
		return false
	}

	w.delivered = true
	w.ch <- msg
	return true
}

func (d *Dialogs) register(conv entity.Conversation) *waiter {
	w := &waiter{ch: make(chan *tgbotapi.Message, 1)}

	d.mu.Lock()
	d.waiters[conv] = w
	d.mu.Unlock()

	return w
}

// unregister снимает ожидание и возвращает сообщение, доставленное после срабатывания таймера
func (d *Dialogs) unregister(conv entity.Conversation, w *waiter) *tgbotapi.Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.waiters[conv] == w {
		delete(d.waiters, conv)
	}

	select {
	case msg := <-w.ch:
		return msg
	default:
		return nil
	}
}
