package entity

import "github.com/samber/lo"

// ElementType тип элемента содержимого сообщения
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "img"
)

// Element элемент содержимого сообщения
type Element struct {
	Type ElementType
	Src  string // адрес изображения для ElementImage
	Text string // текст для ElementText
}

// ImageElement создаёт элемент-изображение
func ImageElement(src string) Element {
	return Element{Type: ElementImage, Src: src}
}

// TextElement создаёт текстовый элемент
func TextElement(text string) Element {
	return Element{Type: ElementText, Text: text}
}

// Message сообщение чата, разобранное на элементы
type Message struct {
	Elements []Element
}

// FirstImage возвращает первое изображение в сообщении
func (m Message) FirstImage() (Element, bool) {
	return lo.Find(m.Elements, func(e Element) bool {
		return e.Type == ElementImage && e.Src != ""
	})
}

// Conversation пара чат + пользователь, в рамках которой идёт диалог
type Conversation struct {
	ChatID int64
	UserID int64
}

// PromptOutcome итог ожидания ответа пользователя
type PromptOutcome struct {
	TimedOut bool
	Message  *Message // nil, если TimedOut
}

// Received создаёт исход с полученным сообщением
func Received(msg Message) PromptOutcome {
	return PromptOutcome{Message: &msg}
}

// TimedOut создаёт исход с истёкшим ожиданием
func TimedOut() PromptOutcome {
	return PromptOutcome{TimedOut: true}
}

// ImageInfo сведения о скачанном изображении
type ImageInfo struct {
	MIME      string
	Extension string // с точкой, например ".png"
	Width     int    // 0, если размер определить не удалось
	Height    int
}
