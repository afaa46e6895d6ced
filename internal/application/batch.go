package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// TimestampLayout: имя подкаталога партии, MMDDYY_HHMMSS
const TimestampLayout = "010206_150405"

// BatchRequest описывает один запуск по каталогу.
type BatchRequest struct {
	InputDir    string
	OutputDir   string
	Timestamped bool     // писать в подкаталог с отметкой времени
	Extensions  []string // пустой список означает entity.DefaultExtensions
	Params      entity.DetectionParams
}

// BatchService обрабатывает каталог снимков и собирает отчёт.
type BatchService struct {
	counter  *CountingService
	results  port.ResultRepository
	report   port.ReportWriter
	stats    port.ContrastStats
	notifier port.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewBatchService создаёт сервис пакетной обработки. notifier может быть nil.
func NewBatchService(
	counter *CountingService,
	results port.ResultRepository,
	report port.ReportWriter,
	stats port.ContrastStats,
	notifier port.Notifier,
	log zerolog.Logger,
) *BatchService {
	return &BatchService{
		counter:  counter,
		results:  results,
		report:   report,
		stats:    stats,
		notifier: notifier,
		log:      log.With().Str("component", "batch").Logger(),
		now:      time.Now,
	}
}

// Run обрабатывает изображения каталога по порядку имён.
// Ошибка одного файла записывается в сводку и не прерывает партию.
// При отмене контекста возвращается частичная сводка и ctx.Err().
func (s *BatchService) Run(ctx context.Context, req BatchRequest) (*entity.BatchSummary, error) {
	params := req.Params.Clone()
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	files, err := listImages(req.InputDir, req.Extensions)
	if err != nil {
		return nil, err
	}

	summary := &entity.BatchSummary{
		OutputDir: req.OutputDir,
		StartedAt: s.now(),
	}
	if req.Timestamped {
		summary.OutputDir = filepath.Join(req.OutputDir, summary.StartedAt.Format(TimestampLayout))
	}

	if err := s.results.Reset(ctx); err != nil {
		return nil, err
	}
	s.stats.Reset()

	if err := s.report.Begin(summary.OutputDir, params); err != nil {
		return nil, err
	}
	summary.LedgerPath = s.report.LedgerPath()
	summary.TablePath = s.report.TablePath()

	s.log.Info().
		Str("input", req.InputDir).
		Str("output", summary.OutputDir).
		Int("images", len(files)).
		Msg("batch started")

	var runErr error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		result, err := s.counter.CountFile(ctx, path, summary.OutputDir, params, s.stats)
		if err != nil {
			s.log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("image skipped")
			summary.Failed = append(summary.Failed, entity.FailedImage{Name: filepath.Base(path), Err: err})
			continue
		}

		if err := s.report.Record(result); err != nil {
			runErr = err
			break
		}
		if err := s.results.Save(ctx, result); err != nil {
			runErr = err
			break
		}
		s.log.Info().Str("image", result.Name).Int("count", result.Count).Msg("image processed")
	}

	results, err := s.results.List(ctx)
	if err != nil && runErr == nil {
		runErr = err
	}
	summary.Results = results

	if err := s.report.Finish(results); err != nil && runErr == nil {
		runErr = err
	}

	summary.Percentiles = s.stats.Percentiles()
	summary.FinishedAt = s.now()
	s.logSummary(summary)

	if s.notifier != nil && runErr == nil {
		if err := s.notifier.Notify(ctx, summary); err != nil {
			s.log.Error().Err(err).Msg("notification failed")
		}
	}

	return summary, runErr
}

func (s *BatchService) logSummary(summary *entity.BatchSummary) {
	p := summary.Percentiles
	event := s.log.Info().
		Int("processed", len(summary.Results)).
		Int("failed", len(summary.Failed)).
		Int("total_spots", summary.Total()).
		Int("samples", p.Samples).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt))
	if p.Samples > 0 {
		event = event.Floats64("abs_percentiles", p.Abs).Floats64("rel_percentiles", p.Rel)
	}
	event.Msg("batch finished")
}

// listImages возвращает подходящие файлы каталога в порядке имён
func listImages(dir string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = entity.DefaultExtensions
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !entity.HasExtension(e.Name(), extensions) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	return files, nil
}
