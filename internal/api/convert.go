package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"tagger-bot/internal/domain/entity"
)

// messageConverter раскладывает сообщение Telegram на элементы содержимого
type messageConverter struct {
	fileURL func(fileID string) (string, error)
	log     *zap.Logger
}

// Convert возвращает сначала вложенное изображение, затем текст и ссылки из него
func (c *messageConverter) Convert(msg *tgbotapi.Message) entity.Message {
	var elements []entity.Element

	image, ok, err := c.Attachment(msg)
	if err != nil {
		c.log.Warn("Skipping unavailable attachment", zap.Int("message_id", msg.MessageID), zap.Error(err))
	}
	if ok && err == nil {
		elements = append(elements, image)
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text != "" {
		elements = append(elements, entity.TextElement(text))
		elements = append(elements, lo.Map(imageLinks(text), func(link string, _ int) entity.Element {
			return entity.ImageElement(link)
		})...)
	}

	return entity.Message{Elements: elements}
}

// Attachment возвращает изображение, приложенное к самому сообщению.
// present == true с ошибкой означает, что изображение есть, но ссылку на него получить не удалось.
func (c *messageConverter) Attachment(msg *tgbotapi.Message) (image entity.Element, present bool, err error) {
	fileID := attachedImageID(msg)
	if fileID == "" {
		return entity.Element{}, false, nil
	}

	link, err := c.fileURL(fileID)
	if err != nil {
		return entity.Element{}, true, fmt.Errorf("resolve file link: %w: %w", entity.ErrRemoteUnavailable, err)
	}
	return entity.ImageElement(link), true, nil
}

func attachedImageID(msg *tgbotapi.Message) string {
	switch {
	case len(msg.Photo) > 0:
		// Telegram присылает размеры по возрастанию
		return msg.Photo[len(msg.Photo)-1].FileID
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		return msg.Document.FileID
	case msg.Sticker != nil && !msg.Sticker.IsAnimated:
		return msg.Sticker.FileID
	default:
		return ""
	}
}

// imageLinks ссылки http(s) в тексте
func imageLinks(text string) []string {
	return lo.Filter(strings.Fields(text), func(field string, _ int) bool {
		return isLink(field)
	})
}

func isLink(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
