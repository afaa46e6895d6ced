package port

import (
	"context"

	"spot-counter/internal/domain/entity"
)

// Notifier интерфейс отправки итогов партии
type Notifier interface {
	// Notify отправляет сводку и журнал
	Notify(ctx context.Context, summary *entity.BatchSummary) error
}
