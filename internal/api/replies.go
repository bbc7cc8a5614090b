package telegram

import (
	"errors"
	"fmt"

	"tagger-bot/internal/domain/entity"
)

const (
	msgHelp = `Image tagger: recognizes tags, character and safety level of an anime-style picture.

Commands:
/rec — recognize an image. Attach a photo, reply to a message with an image, pass an image link, or send the image after the command.
/view_results <id> — show a saved result by its history ID.
/help — this message.`

	msgNotAnImage     = "This does not look like an image."
	msgTimeout        = "Timed out."
	msgFailed         = "Recognition failed, please try again later."
	msgBusy           = "Please wait, your previous image is still being processed."
	msgHistoryOff     = "History is disabled."
	msgViewUsage      = "Usage: /view_results <id>, where id is a positive number."
	msgNotFoundFormat = "Result #%d not found."
)

// Результаты команд для метрик
const (
	resultOK         = "ok"
	resultNotAnImage = "not_an_image"
	resultTimeout    = "timeout"
	resultBusy       = "busy"
	resultDisabled   = "disabled"
	resultNotFound   = "not_found"
	resultBadInput   = "bad_input"
	resultError      = "error"
)

// errorReply переводит ошибку сценария в ответ пользователю и результат для метрик.
// internal == true означает, что ошибку нужно залогировать.
func errorReply(err error) (text, result string, internal bool) {
	switch {
	case errors.Is(err, entity.ErrNotAnImage):
		return msgNotAnImage, resultNotAnImage, false
	case errors.Is(err, entity.ErrTimeout):
		return msgTimeout, resultTimeout, false
	case errors.Is(err, entity.ErrBusy):
		return msgBusy, resultBusy, false
	case errors.Is(err, entity.ErrHistoryDisabled):
		return msgHistoryOff, resultDisabled, false
	default:
		return msgFailed, resultError, true
	}
}

func notFoundReply(id uint64) string {
	return fmt.Sprintf(msgNotFoundFormat, id)
}
