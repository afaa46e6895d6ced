package app

import (
	"context"
	"fmt"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// SessionService управляет состоянием чатов и их параметрами детекции.
type SessionService struct {
	repo     port.SessionRepository
	defaults entity.DetectionParams
}

// NewSessionService создаёт сервис; ResetParams возвращает чат к defaults
func NewSessionService(repo port.SessionRepository, defaults entity.DetectionParams) *SessionService {
	return &SessionService{repo: repo, defaults: defaults.Clone()}
}

func (s *SessionService) Get(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.repo.Get(ctx, chatID)
}

func (s *SessionService) SetState(ctx context.Context, chatID int64, state entity.SessionState) (*entity.Session, error) {
	return s.update(ctx, chatID, func(session *entity.Session) error {
		session.SetState(state)
		return nil
	})
}

func (s *SessionService) BeginCount(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.SetState(ctx, chatID, entity.StateAwaitingImage)
}

func (s *SessionService) Cancel(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.SetState(ctx, chatID, entity.StateMainMenu)
}

// SetChannel меняет канал детекции чата
func (s *SessionService) SetChannel(ctx context.Context, chatID int64, channel string) (*entity.Session, error) {
	return s.update(ctx, chatID, func(session *entity.Session) error {
		next := session.Params.Clone()
		next.Channel = entity.Channel(channel)
		next.Normalize()
		if err := next.Validate(); err != nil {
			return err
		}
		session.Params = next
		return nil
	})
}

// SetThresholds меняет пороги фотометрического фильтра чата
func (s *SessionService) SetThresholds(ctx context.Context, chatID int64, contrast, rel float64) (*entity.Session, error) {
	return s.update(ctx, chatID, func(session *entity.Session) error {
		if contrast < 0 || rel < 0 {
			return fmt.Errorf("%w: thresholds must be >= 0, got %g and %g", entity.ErrInvalidParams, contrast, rel)
		}
		session.Params.ContrastThreshold = contrast
		session.Params.RelThreshold = rel
		return nil
	})
}

// ResetParams возвращает параметры чата к значениям по умолчанию
func (s *SessionService) ResetParams(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.update(ctx, chatID, func(session *entity.Session) error {
		session.Params = s.defaults.Clone()
		return nil
	})
}

func (s *SessionService) update(ctx context.Context, chatID int64, apply func(*entity.Session) error) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if err := apply(session); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
