//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"tagger-bot/internal/domain/entity"
)

// ImageInspector проверяет изображение без OpenCV: по сигнатуре и заголовку формата.
type ImageInspector struct {
	MinSide int // минимальная сторона в пикселях, 0 — без ограничения
}

// NewImageInspector создаёт инспектор без ограничения на размер.
func NewImageInspector() *ImageInspector {
	return &ImageInspector{}
}

// Inspect определяет тип данных и, если формат известен, размеры изображения.
func (i *ImageInspector) Inspect(ctx context.Context, data []byte) (*entity.ImageInfo, error) {
	_ = ctx
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", entity.ErrNotAnImage)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", entity.ErrNotAnImage, mt.String())
	}

	info := &entity.ImageInfo{
		MIME:      mt.String(),
		Extension: mt.Extension(),
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	switch {
	case errors.Is(err, image.ErrFormat):
		// Формат без зарегистрированного декодера (avif, heic, ...): размеры неизвестны,
		// но сигнатура изображения есть, решать будет удалённый сервис.
		return info, nil
	case err != nil:
		return nil, fmt.Errorf("%w: decode %s header: %v", entity.ErrNotAnImage, mt.String(), err)
	}

	info.Width, info.Height = cfg.Width, cfg.Height
	if err := i.checkSize(info); err != nil {
		return nil, err
	}
	return info, nil
}

func (i *ImageInspector) checkSize(info *entity.ImageInfo) error {
	if info.Width <= 0 || info.Height <= 0 {
		return fmt.Errorf("%w: empty image", entity.ErrNotAnImage)
	}
	if i.MinSide > 0 && (info.Width < i.MinSide || info.Height < i.MinSide) {
		return fmt.Errorf("%w: image is too small (%dx%d)", entity.ErrNotAnImage, info.Width, info.Height)
	}
	return nil
}
