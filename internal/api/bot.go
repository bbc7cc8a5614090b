package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "tagger-bot/internal/application"
	"tagger-bot/internal/container"
	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/infrastructure/metrics"
)

// taggingService сценарии, которые бот вызывает по командам
type taggingService interface {
	Recognize(ctx context.Context, in app.ResolveInput) (string, error)
	ViewResult(ctx context.Context, id uint64) (*entity.HistoryRecord, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	converter *messageConverter
	dialogs   *Dialogs
	log       *zap.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	_ = tgbotapi.SetLogger(zap.NewStdLog(log.Named("tgbotapi")))

	log.Info("Authorized on account", zap.String("username", api.Self.UserName))

	converter := &messageConverter{fileURL: fileLinker(api), log: log}
	return &Bot{
		api:       api,
		converter: converter,
		dialogs:   newDialogs(api, converter.Convert),
		log:       log,
	}, nil
}

// Dialogs реализация port.Prompter и port.Messenger для сервисов
func (b *Bot) Dialogs() *Dialogs {
	return b.dialogs
}

// Run обрабатывает обновления до отмены ctx и дожидается начатых команд
func (b *Bot) Run(ctx context.Context, c *container.Container) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	h := &handler{
		sender:    b.api,
		converter: b.converter,
		dialogs:   b.dialogs,
		tagging:   c.TaggingService,
		botName:   b.api.Self.UserName,
		log:       b.log,
	}
	defer h.wait()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("Stopping bot")
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

// fileLinker возвращает прямые ссылки на файлы; токен бота из ошибок вырезается
func fileLinker(api *tgbotapi.BotAPI) func(fileID string) (string, error) {
	return func(fileID string) (string, error) {
		link, err := api.GetFileDirectURL(fileID)
		if err != nil {
			return "", errors.New(redactToken(err.Error(), api.Token))
		}
		return link, nil
	}
}

func redactToken(text, token string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, "<token>")
}

// handler разбирает сообщения и запускает команды
type handler struct {
	sender    sender
	converter *messageConverter
	dialogs   *Dialogs
	tagging   taggingService
	botName   string
	log       *zap.Logger

	wg sync.WaitGroup
}

func (h *handler) wait() {
	h.wg.Wait()
}

// handleMessage обрабатывает входящее сообщение
func (h *handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	conv := entity.Conversation{ChatID: msg.Chat.ID, UserID: msg.From.ID}

	// Ответ на приглашение прислать изображение
	if h.dialogs.Deliver(conv, msg) {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	cmd, ok := ParseCommand(text, h.botName)
	if !ok {
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.handleCommand(ctx, conv, msg, cmd)
	}()
}

// handleCommand выполняет команду и отвечает на исходное сообщение
func (h *handler) handleCommand(ctx context.Context, conv entity.Conversation, msg *tgbotapi.Message, cmd Command) {
	log := h.log.With(
		zap.String("command", cmd.Kind.String()),
		zap.Int64("user_id", conv.UserID),
		zap.Int64("chat_id", conv.ChatID),
	)

	var reply, result string
	switch cmd.Kind {
	case CommandRecognize:
		reply, result = h.recognize(ctx, conv, msg, cmd, log)
	case CommandViewResults:
		reply, result = h.viewResult(ctx, cmd, log)
	default:
		reply, result = msgHelp, resultOK
	}

	metrics.RequestsTotal.WithLabelValues(cmd.Kind.String(), result).Inc()
	h.reply(conv, msg.MessageID, reply, log)
}

func (h *handler) recognize(ctx context.Context, conv entity.Conversation, msg *tgbotapi.Message, cmd Command, log *zap.Logger) (string, string) {
	in := app.ResolveInput{Conversation: conv}

	image, present, err := h.converter.Attachment(msg)
	switch {
	case err != nil:
		// Изображение приложено, но недоступно: цитату не используем
		return h.failure(err, log)
	case present:
		in.Attachment = &image
	case cmd.firstArg() != "":
		arg := cmd.firstArg()
		element := entity.TextElement(arg)
		if isLink(arg) {
			element = entity.ImageElement(arg)
		}
		in.Attachment = &element
	}
	if in.Attachment == nil && msg.ReplyToMessage != nil {
		quote := h.converter.Convert(msg.ReplyToMessage)
		in.Quote = &quote
	}

	text, err := h.tagging.Recognize(ctx, in)
	if err != nil {
		return h.failure(err, log)
	}
	return text, resultOK
}

func (h *handler) viewResult(ctx context.Context, cmd Command, log *zap.Logger) (string, string) {
	id, err := strconv.ParseUint(cmd.firstArg(), 10, 64)
	if err != nil || id == 0 {
		return msgViewUsage, resultBadInput
	}

	record, err := h.tagging.ViewResult(ctx, id)
	if err != nil {
		return h.failure(err, log)
	}
	if record == nil {
		return notFoundReply(id), resultNotFound
	}
	return record.Content, resultOK
}

func (h *handler) failure(err error, log *zap.Logger) (string, string) {
	text, result, internal := errorReply(err)
	if internal {
		log.Error("Command failed", zap.Error(err))
	} else {
		log.Debug("Command rejected", zap.String("reason", result), zap.Error(err))
	}
	return text, result
}

// reply отправляет ответ на сообщение с командой
func (h *handler) reply(conv entity.Conversation, messageID int, text string, log *zap.Logger) {
	msg := tgbotapi.NewMessage(conv.ChatID, text)
	msg.ReplyToMessageID = messageID
	msg.AllowSendingWithoutReply = true
	if _, err := h.sender.Send(msg); err != nil {
		log.Error("Error sending message", zap.Error(err))
	}
}
