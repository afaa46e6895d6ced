package port

import (
	"context"

	"spot-counter/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий бота
type SessionRepository interface {
	// Get возвращает сессию чата, создаёт новую если не найдена
	Get(ctx context.Context, chatID int64) (*entity.Session, error)

	// Save сохраняет сессию
	Save(ctx context.Context, session *entity.Session) error

	// UpdateState обновляет состояние сессии
	UpdateState(ctx context.Context, chatID int64, state entity.SessionState) error
}
