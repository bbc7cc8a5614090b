package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateIdle          UserState = "idle"           // Ничего не происходит
	StateAwaitingImage UserState = "awaiting_image" // Ожидание изображения после приглашения
	StateProcessing    UserState = "processing"     // Распознавание изображения
)

// User представляет пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateIdle,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Busy сообщает, занят ли пользователь распознаванием
func (u *User) Busy() bool {
	return u.State != StateIdle
}
