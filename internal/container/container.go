package container

import (
	"fmt"

	"github.com/rs/zerolog"

	"spot-counter/config"
	app "spot-counter/internal/application"
	"spot-counter/internal/domain/port"
	"spot-counter/internal/infrastructure/diagnostics"
	"spot-counter/internal/infrastructure/storage"
	"spot-counter/internal/infrastructure/vision"
)

type Container struct {
	Detector        port.SpotDetector
	CountingService *app.CountingService
	BatchService    *app.BatchService
	SessionService  *app.SessionService
	Stats           *diagnostics.Collector
}

// New собирает сервисы по конфигурации. notifier может быть nil.
func New(cfg *config.Config, notifier port.Notifier, log zerolog.Logger) (*Container, error) {
	detector, err := newDetector(cfg.Backend, log)
	if err != nil {
		return nil, err
	}

	images := storage.NewImageFiles()
	stats := diagnostics.NewCollector()

	countingService := app.NewCountingService(detector, images, log)
	batchService := app.NewBatchService(
		countingService,
		storage.NewMemoryResultRepository(),
		storage.NewFileReport(),
		stats,
		notifier,
		log,
	)
	sessionService := app.NewSessionService(storage.NewMemorySessionRepository(cfg.Detection), cfg.Detection)

	return &Container{
		Detector:        detector,
		CountingService: countingService,
		BatchService:    batchService,
		SessionService:  sessionService,
		Stats:           stats,
	}, nil
}

func newDetector(backend string, log zerolog.Logger) (*vision.SpotDetector, error) {
	switch backend {
	case config.BackendNative, "":
		return vision.NewNativeSpotDetector(log), nil
	case config.BackendOpenCV:
		cv, err := vision.NewOpenCVBackend()
		if err != nil {
			return nil, fmt.Errorf("opencv backend: %w", err)
		}
		return vision.NewSpotDetector(cv, cv, log), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
