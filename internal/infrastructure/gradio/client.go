package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"tagger-bot/internal/domain/entity"
)

// DefaultBaseURL адрес Space с тэггерами WD
const DefaultBaseURL = "https://smilingwolf-wd-tagger.hf.space"

// Номера функции и триггера кнопки "Submit" в приложении Space
const (
	predictFnIndex   = 2
	predictTriggerID = 18
)

// maxResponseSize ограничивает чтение тел ответов и скачиваемых изображений
const maxResponseSize = 32 << 20

// errBodyTooLarge тело ответа длиннее maxBodySize
var errBodyTooLarge = errors.New("response body too large")

// FileData ссылка на загруженный на сервер файл
type FileData struct {
	Path     string `json:"path"`
	Size     *int64 `json:"size"`
	MimeType string `json:"mime_type"`
}

// JoinRequest тело запроса постановки задачи в очередь
type JoinRequest struct {
	Data        []any  `json:"data"`
	EventData   any    `json:"event_data"`
	FnIndex     int    `json:"fn_index"`
	TriggerID   int    `json:"trigger_id"`
	SessionHash string `json:"session_hash"`
}

// NewJoinRequest собирает задачу разметки для загруженного файла
func NewJoinRequest(path string, req entity.TaggingRequest, sessionHash string) JoinRequest {
	return JoinRequest{
		Data: []any{
			FileData{Path: path},
			string(req.Model),
			req.GeneralThreshold,
			req.GeneralUseMCut,
			req.CharacterThreshold,
			req.CharacterUseMCut,
		},
		EventData:   nil,
		FnIndex:     predictFnIndex,
		TriggerID:   predictTriggerID,
		SessionHash: sessionHash,
	}
}

// UploadFile файл для загрузки на сервер
type UploadFile struct {
	Name string
	MIME string
	Data []byte
}

// Client HTTP-клиент очереди Gradio. Каждый метод — ровно один HTTP-запрос.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxBodySize int64
	log         *zap.Logger
}

// NewClient создаёт клиента с таймаутом на каждый запрос
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBodySize: maxResponseSize,
		log:         log,
	}
}

// FetchImage скачивает изображение по ссылке пользователя
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	// Ссылки на файлы Telegram содержат токен бота, поэтому URL в ошибки не попадает
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w: invalid url: %w", entity.ErrRemoteUnavailable, redactURLError(err))
	}

	c.log.Debug("Fetching image", zap.String("host", req.URL.Host))

	data, err := c.do(req)
	if errors.Is(err, errBodyTooLarge) {
		return nil, fmt.Errorf("fetch image: %w: %w", entity.ErrNotAnImage, err)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	return data, nil
}

// Upload загружает файл и возвращает путь, назначенный сервером
func (c *Client) Upload(ctx context.Context, sessionHash string, file UploadFile) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, file.Name))
	header.Set("Content-Type", file.MIME)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("upload: create form part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", fmt.Errorf("upload: write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("upload: close form: %w", err)
	}

	endpoint := c.baseURL + "/upload?upload_id=" + url.QueryEscape(sessionHash)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("upload: %w: %w", entity.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", asMalformed(err))
	}

	var paths []string
	if err := json.Unmarshal(respBody, &paths); err != nil {
		return "", fmt.Errorf("upload: %w: decode paths: %w", entity.ErrMalformedResponse, err)
	}
	if len(paths) == 0 || paths[0] == "" {
		return "", fmt.Errorf("upload: %w: no file path returned", entity.ErrMalformedResponse)
	}

	return paths[0], nil
}

// Join ставит задачу в очередь. Результат задачи этот запрос не возвращает.
func (c *Client) Join(ctx context.Context, join JoinRequest) error {
	payload, err := json.Marshal(join)
	if err != nil {
		return fmt.Errorf("join: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/queue/join", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("join: %w: %w", entity.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("join: %w", asMalformed(err))
	}
	return nil
}

// QueueData читает поток событий очереди для сессии целиком
func (c *Client) QueueData(ctx context.Context, sessionHash string) ([]byte, error) {
	endpoint := c.baseURL + "/queue/data?session_hash=" + url.QueryEscape(sessionHash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("queue data: %w: %w", entity.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "text/event-stream")

	data, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("queue data: %w", asMalformed(err))
	}
	return data, nil
}

// do выполняет запрос и читает тело; сетевые ошибки и не-2xx статусы — ErrRemoteUnavailable
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrRemoteUnavailable, redactURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", entity.ErrRemoteUnavailable, redactURLError(err))
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", errBodyTooLarge, c.maxBodySize)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", entity.ErrRemoteUnavailable, resp.StatusCode, snippet(body))
	}

	return body, nil
}

// asMalformed превращает обрезанный ответ сервиса в ErrMalformedResponse
func asMalformed(err error) error {
	if errors.Is(err, errBodyTooLarge) {
		return fmt.Errorf("%w: %w", entity.ErrMalformedResponse, err)
	}
	return err
}

// redactURLError убирает адрес запроса из *url.Error, оставляя схему и хост
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return fmt.Errorf("%s %s: %w", urlErr.Op, redactURL(urlErr.URL), urlErr.Err)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<redacted>"
	}
	return u.Scheme + "://" + u.Host + "/<redacted>"
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
