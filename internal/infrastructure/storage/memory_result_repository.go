package storage

import (
	"context"
	"sync"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// MemoryResultRepository хранит результаты текущей партии в памяти
type MemoryResultRepository struct {
	mu      sync.RWMutex
	results []entity.ImageResult
}

// NewMemoryResultRepository создаёт пустое хранилище результатов
func NewMemoryResultRepository() *MemoryResultRepository {
	return &MemoryResultRepository{}
}

// Save добавляет результат в конец списка
func (r *MemoryResultRepository) Save(ctx context.Context, result entity.ImageResult) error {
	r.mu.Lock()
	r.results = append(r.results, result)
	r.mu.Unlock()

	return nil
}

// List возвращает копию результатов в порядке добавления
func (r *MemoryResultRepository) List(ctx context.Context) ([]entity.ImageResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]entity.ImageResult(nil), r.results...), nil
}

// Reset очищает хранилище
func (r *MemoryResultRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.results = nil
	r.mu.Unlock()

	return nil
}

var _ port.ResultRepository = (*MemoryResultRepository)(nil)
