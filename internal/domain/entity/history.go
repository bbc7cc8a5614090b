package entity

// HistoryRecord сохранённый результат распознавания
type HistoryRecord struct {
	ID      uint64 // назначается хранилищем, строго возрастает
	UserID  string // автор запроса
	Content string // текст результата без изменений
}
