package gradio

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
	"tagger-bot/internal/infrastructure/metrics"
)

// Названия шагов для метрик
const (
	stepFetch  = "fetch"
	stepUpload = "upload"
	stepJoin   = "join"
	stepQueue  = "queue_data"
)

// Tagger реализация port.Tagger поверх очереди Gradio
type Tagger struct {
	client     *Client
	decoder    StreamDecoder
	inspector  port.ImageInspector
	newSession func() string
	log        *zap.Logger
}

var _ port.Tagger = (*Tagger)(nil)

// NewTagger создаёт адаптер тэггера
func NewTagger(client *Client, decoder StreamDecoder, inspector port.ImageInspector, log *zap.Logger) *Tagger {
	return &Tagger{
		client:     client,
		decoder:    decoder,
		inspector:  inspector,
		newSession: uuid.NewString,
		log:        log,
	}
}

// Tag скачивает изображение, загружает его в Space, ставит задачу в очередь и разбирает результат
func (t *Tagger) Tag(ctx context.Context, req entity.TaggingRequest) (*entity.TaggingResult, error) {
	log := t.log.With(zap.String("model", string(req.Model)), zap.String("image_host", hostOf(req.ImageURL)))

	started := time.Now()
	data, err := t.client.FetchImage(ctx, req.ImageURL)
	metrics.ObserveRemote(stepFetch, started, err)
	if err != nil {
		return nil, err
	}

	info, err := t.inspector.Inspect(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("inspect image: %w", err)
	}

	sessionHash := t.newSession()
	log = log.With(zap.String("session_hash", sessionHash))
	log.Debug("Image accepted",
		zap.String("mime", info.MIME),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
	)

	started = time.Now()
	path, err := t.client.Upload(ctx, sessionHash, UploadFile{
		Name: "image" + info.Extension,
		MIME: info.MIME,
		Data: data,
	})
	metrics.ObserveRemote(stepUpload, started, err)
	if err != nil {
		return nil, err
	}

	started = time.Now()
	err = t.client.Join(ctx, NewJoinRequest(path, req, sessionHash))
	metrics.ObserveRemote(stepJoin, started, err)
	if err != nil {
		return nil, err
	}

	started = time.Now()
	stream, err := t.client.QueueData(ctx, sessionHash)
	metrics.ObserveRemote(stepQueue, started, err)
	if err != nil {
		return nil, err
	}

	event, err := t.decoder.Decode(stream)
	if err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}

	result, err := DecodeOutput(event.Output.Data)
	if err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}

	log.Info("Image tagged",
		zap.String("rating", result.RatingLabel),
		zap.Bool("has_character", result.HasCharacter()),
	)
	return result, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
