package gradio

import (
	"encoding/json"
	"fmt"
	"strings"

	"tagger-bot/internal/domain/entity"
)

// Параметры потока событий, проверенные на текущей версии Space
const (
	DefaultEventLine   = 4
	DefaultEventPrefix = "data:"
	// ScanEventLine включает поиск события завершения вместо фиксированной строки
	ScanEventLine = -1
)

const msgProcessCompleted = "process_completed"

// Event событие очереди Gradio
type Event struct {
	Msg     string      `json:"msg"`
	EventID string      `json:"event_id"`
	Success *bool       `json:"success"`
	Output  EventOutput `json:"output"`
}

// EventOutput результат задачи внутри события
type EventOutput struct {
	Data  []json.RawMessage `json:"data"`
	Error *string           `json:"error"`
}

// StreamDecoder достаёт событие с результатом из тела /queue/data.
//
// Line — номер строки (с нуля), в которой сервис присылает событие завершения,
// Prefix — префикс строки перед JSON. При Line < 0 строки просматриваются
// по порядку до первого события process_completed.
type StreamDecoder struct {
	Line   int
	Prefix string
}

// DefaultStreamDecoder пятая строка, префикс "data:"
var DefaultStreamDecoder = StreamDecoder{Line: DefaultEventLine, Prefix: DefaultEventPrefix}

// Decode разбирает поток; любое несоответствие формату — ErrMalformedResponse
func (d StreamDecoder) Decode(body []byte) (*Event, error) {
	lines := strings.Split(string(body), "\n")

	var (
		event *Event
		err   error
	)
	if d.Line < 0 {
		event, err = d.scan(lines)
	} else {
		event, err = d.fixed(lines)
	}
	if err != nil {
		return nil, err
	}

	if event.Success != nil && !*event.Success {
		reason := "unknown error"
		if event.Output.Error != nil {
			reason = *event.Output.Error
		}
		return nil, fmt.Errorf("%w: job failed: %s", entity.ErrMalformedResponse, reason)
	}
	if event.Output.Data == nil {
		return nil, fmt.Errorf("%w: event %q has no output data", entity.ErrMalformedResponse, event.Msg)
	}

	return event, nil
}

func (d StreamDecoder) fixed(lines []string) (*Event, error) {
	if len(lines) <= d.Line {
		return nil, fmt.Errorf("%w: stream has %d lines, want at least %d", entity.ErrMalformedResponse, len(lines), d.Line+1)
	}

	line := strings.TrimSuffix(lines[d.Line], "\r")
	if !strings.HasPrefix(line, d.Prefix) {
		return nil, fmt.Errorf("%w: line %d does not start with %q", entity.ErrMalformedResponse, d.Line, d.Prefix)
	}

	var event Event
	if err := json.Unmarshal([]byte(line[len(d.Prefix):]), &event); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", entity.ErrMalformedResponse, d.Line, err)
	}
	return &event, nil
}

func (d StreamDecoder) scan(lines []string) (*Event, error) {
	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		if !strings.HasPrefix(line, d.Prefix) {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(line[len(d.Prefix):]), &event); err != nil {
			continue
		}
		if event.Msg == msgProcessCompleted {
			return &event, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s event in stream", entity.ErrMalformedResponse, msgProcessCompleted)
}
