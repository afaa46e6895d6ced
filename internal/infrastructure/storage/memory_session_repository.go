package storage

import (
	"context"
	"sync"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий бота
type MemorySessionRepository struct {
	mu       sync.RWMutex
	defaults entity.DetectionParams
	sessions map[int64]*entity.Session
}

// NewMemorySessionRepository создаёт хранилище; новые сессии получают копию defaults
func NewMemorySessionRepository(defaults entity.DetectionParams) *MemorySessionRepository {
	return &MemorySessionRepository{
		defaults: defaults.Clone(),
		sessions: make(map[int64]*entity.Session),
	}
}

// Get возвращает сессию чата, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, chatID int64) (*entity.Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[chatID]
	r.mu.RUnlock()

	if exists {
		return session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// другой обработчик мог создать сессию между блокировками
	if session, exists = r.sessions[chatID]; exists {
		return session, nil
	}
	session = entity.NewSession(chatID, r.defaults)
	r.sessions[chatID] = session

	return session, nil
}

// Save сохраняет сессию
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	r.sessions[session.ChatID] = session
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние сессии
func (r *MemorySessionRepository) UpdateState(ctx context.Context, chatID int64, state entity.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, exists := r.sessions[chatID]; exists {
		session.SetState(state)
	}

	return nil
}

// Defaults возвращает параметры, с которыми создаются новые сессии
func (r *MemorySessionRepository) Defaults() entity.DetectionParams {
	return r.defaults.Clone()
}

var _ port.SessionRepository = (*MemorySessionRepository)(nil)
