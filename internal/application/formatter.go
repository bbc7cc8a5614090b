package app

import (
	"fmt"
	"math"
	"strings"

	"tagger-bot/internal/domain/entity"
)

// unknownCharacter подставляется, когда персонаж не распознан
const unknownCharacter = "unknown"

// FormatResult превращает результат разметки в текст ответа.
// Порядок уверенностей сохраняется таким, каким его вернул сервис.
func FormatResult(r entity.TaggingResult) string {
	var b strings.Builder

	b.WriteString("Tags:\n")
	b.WriteString(r.GeneralTags)

	b.WriteString("\n\nCharacter: ")
	if r.HasCharacter() {
		b.WriteString(*r.CharacterLabel)
		writeConfidences(&b, r.CharacterConfidences)
	} else {
		b.WriteString(unknownCharacter)
	}

	b.WriteString("\n\nSafety level: ")
	b.WriteString(r.RatingLabel)
	writeConfidences(&b, r.RatingConfidences)

	return b.String()
}

func writeConfidences(b *strings.Builder, items []entity.Confidence) {
	for _, item := range items {
		fmt.Fprintf(b, "\n%s (%d%%)", item.Label, Percent(item.Confidence))
	}
}

// Percent переводит уверенность в проценты с отбрасыванием дробной части
func Percent(confidence float64) int {
	return int(math.Trunc(confidence * 100))
}
