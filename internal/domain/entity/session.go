package entity

// SessionState состояние чата в диалоге с ботом
type SessionState string

const (
	StateMainMenu      SessionState = "main_menu"      // В главном меню
	StateAwaitingImage SessionState = "awaiting_image" // Ожидание снимка
	StateProcessing    SessionState = "processing"     // Подсчёт пятен
)

// Session: состояние и собственные параметры детекции одного чата
type Session struct {
	ChatID int64
	State  SessionState
	Params DetectionParams
}

// NewSession создаёт сессию с начальным состоянием и заданными параметрами
func NewSession(chatID int64, params DetectionParams) *Session {
	return &Session{
		ChatID: chatID,
		State:  StateMainMenu,
		Params: params.Clone(),
	}
}

// SetState обновляет состояние сессии
func (s *Session) SetState(state SessionState) {
	s.State = state
}
