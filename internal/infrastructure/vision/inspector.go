//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"gocv.io/x/gocv"

	"tagger-bot/internal/domain/entity"
)

// ImageInspector проверяет изображение полным декодированием через OpenCV.
type ImageInspector struct {
	MinSide int // минимальная сторона в пикселях, 0 — без ограничения
}

// NewImageInspector создаёт инспектор без ограничения на размер.
func NewImageInspector() *ImageInspector {
	return &ImageInspector{}
}

// Inspect декодирует изображение и возвращает его тип и размеры.
func (i *ImageInspector) Inspect(ctx context.Context, data []byte) (*entity.ImageInfo, error) {
	_ = ctx
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", entity.ErrNotAnImage, mt.String())
	}

	mat, err := decodeToMat(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrNotAnImage, err)
	}
	defer mat.Close()

	info := &entity.ImageInfo{
		MIME:      mt.String(),
		Extension: mt.Extension(),
		Width:     mat.Cols(),
		Height:    mat.Rows(),
	}
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

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}
