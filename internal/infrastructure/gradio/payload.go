package gradio

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"tagger-bot/internal/domain/entity"
)

// Позиции значений в output.data
const (
	generalTagsIndex = 0
	ratingIndex      = 1
	characterIndex   = 2
	outputLength     = 3
)

// labelOutput значение компонента Label: метка и распределение уверенностей
type labelOutput struct {
	Label       *string           `json:"label"`
	Confidences []labelConfidence `json:"confidences"`
}

type labelConfidence struct {
	Label      *string  `json:"label"`
	Confidence *float64 `json:"confidence"`
}

// DecodeOutput проверяет форму output.data и собирает TaggingResult.
// Всё, что не совпадает с ожидаемой формой, — ErrMalformedResponse.
func DecodeOutput(data []json.RawMessage) (*entity.TaggingResult, error) {
	if len(data) < outputLength {
		return nil, fmt.Errorf("%w: output has %d values, want %d", entity.ErrMalformedResponse, len(data), outputLength)
	}

	var general *string
	if err := json.Unmarshal(data[generalTagsIndex], &general); err != nil || general == nil {
		return nil, fmt.Errorf("%w: general tags are not a string", entity.ErrMalformedResponse)
	}

	rating, err := decodeLabel(data[ratingIndex], "rating")
	if err != nil {
		return nil, err
	}
	if rating.Label == nil {
		return nil, fmt.Errorf("%w: rating label is missing", entity.ErrMalformedResponse)
	}
	ratingConfidences, err := toConfidences(rating.Confidences, "rating")
	if err != nil {
		return nil, err
	}

	character, err := decodeLabel(data[characterIndex], "character")
	if err != nil {
		return nil, err
	}
	characterConfidences, err := toConfidences(character.Confidences, "character")
	if err != nil {
		return nil, err
	}

	return &entity.TaggingResult{
		GeneralTags:          *general,
		CharacterLabel:       character.Label,
		CharacterConfidences: characterConfidences,
		RatingLabel:          *rating.Label,
		RatingConfidences:    ratingConfidences,
	}, nil
}

func decodeLabel(raw json.RawMessage, name string) (*labelOutput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %s is not an object", entity.ErrMalformedResponse, name)
	}

	var out labelOutput
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entity.ErrMalformedResponse, name, err)
	}
	return &out, nil
}

func toConfidences(items []labelConfidence, name string) ([]entity.Confidence, error) {
	for i, item := range items {
		if item.Label == nil || item.Confidence == nil {
			return nil, fmt.Errorf("%w: %s confidence %d is incomplete", entity.ErrMalformedResponse, name, i)
		}
	}

	return lo.Map(items, func(item labelConfidence, _ int) entity.Confidence {
		return entity.Confidence{Label: *item.Label, Confidence: *item.Confidence}
	}), nil
}
