package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

// AnalysisService связывает загрузку CSV, хранилища и анализ схваток.
// Анализ всегда пересчитывается из сохраненного ряда.
type AnalysisService struct {
	analyzer    *contraction.Analyzer
	cacheRepo   CacheRepository
	dbRepo      DBRepository
	notifier    Notifier
	defaults    contraction.Params
	loadOptions series.LoadOptions
	logger      zerolog.Logger
}

type Option func(*AnalysisService)

// WithDefaults задает параметры, которые используются, если запрос их не передал
func WithDefaults(p contraction.Params) Option {
	return func(s *AnalysisService) {
		s.defaults = p
	}
}

func WithLoadOptions(opts series.LoadOptions) Option {
	return func(s *AnalysisService) {
		s.loadOptions = opts
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *AnalysisService) {
		s.logger = logger
	}
}

func NewAnalysisService(
	analyzer *contraction.Analyzer,
	cacheRepo CacheRepository,
	dbRepo DBRepository,
	opts ...Option,
) *AnalysisService {
	s := &AnalysisService{
		analyzer:  analyzer,
		cacheRepo: cacheRepo,
		dbRepo:    dbRepo,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNotifier подключает получателя результатов. Вызывается до запуска сервера.
func (s *AnalysisService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Defaults возвращает параметры анализа по умолчанию
func (s *AnalysisService) Defaults() contraction.Params {
	return s.defaults
}

// UploadCSV читает UC-ряд, кеширует его со статусом pending и сразу анализирует
// с параметрами по умолчанию. Ошибки загрузчика возвращаются обернутыми через %w.
func (s *AnalysisService) UploadCSV(ctx context.Context, file io.Reader, recordingID, name string) (*models.UploadResponse, error) {
	if recordingID == "" {
		recordingID = uuid.New().String()
	}

	log := s.logger.With().Str("recording_id", recordingID).Logger()
	log.Info().Str("name", name).Msg("processing uploaded CSV")

	ucSeries, err := series.Load(file, s.loadOptions)
	if err != nil {
		log.Warn().Err(err).Msg("CSV parsing failed")
		return nil, fmt.Errorf("failed to parse UC CSV: %w", err)
	}

	recording := &models.Recording{
		RecordingID: recordingID,
		Name:        name,
		Samples:     ucSeries.Samples(),
		CreatedAt:   time.Now().UTC(),
		Status:      models.StatusPending,
	}

	if err := s.cacheRepo.SaveRecording(ctx, recording); err != nil {
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}

	result, err := s.analyzer.Analyze(ucSeries, s.defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze recording: %w", err)
	}

	s.publish(&models.AnalysisResponse{
		RecordingID: recordingID,
		Analysis:    result,
		AnalyzedAt:  time.Now().UTC(),
	})

	log.Info().
		Int("samples", ucSeries.Len()).
		Int("contractions", len(result.Events)).
		Msg("recording uploaded and analyzed")

	return &models.UploadResponse{
		RecordingID: recordingID,
		Status:      models.StatusPending,
		SampleCount: ucSeries.Len(),
		Analysis:    result,
		Message:     "Recording analyzed and waiting for decision",
	}, nil
}

// Analyze пересчитывает анализ записи. Пустые параметры заменяются параметрами по умолчанию.
func (s *AnalysisService) Analyze(ctx context.Context, recordingID string, p contraction.Params) (*models.AnalysisResponse, error) {
	recording, err := s.GetRecording(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	ucSeries, err := recording.Series()
	if err != nil {
		return nil, fmt.Errorf("stored recording %s is invalid: %w", recordingID, err)
	}

	if isZeroParams(p) {
		p = s.defaults
	}

	result, err := s.analyzer.Analyze(ucSeries, p)
	if err != nil {
		return nil, err
	}

	response := &models.AnalysisResponse{
		RecordingID: recordingID,
		Analysis:    result,
		AnalyzedAt:  time.Now().UTC(),
	}
	s.publish(response)

	s.logger.Debug().
		Str("recording_id", recordingID).
		Int("contractions", len(result.Events)).
		Msg("recording re-analyzed")

	return response, nil
}

// HandleDecision сохраняет запись в базу или удаляет ее из кеша
func (s *AnalysisService) HandleDecision(ctx context.Context, decision *models.SaveDecision) (*models.DecisionResponse, error) {
	if decision.RecordingID == "" {
		return nil, models.ErrEmptyRecordingID
	}

	log := s.logger.With().Str("recording_id", decision.RecordingID).Logger()
	log.Info().Bool("save", decision.Save).Msg("processing decision")

	recording, err := s.cacheRepo.GetRecording(ctx, decision.RecordingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recording data: %w", err)
	}

	if !decision.Save {
		if err := s.cacheRepo.DeleteRecording(ctx, decision.RecordingID); err != nil {
			return nil, fmt.Errorf("failed to delete recording: %w", err)
		}

		log.Info().Msg("recording discarded")

		return &models.DecisionResponse{
			Status:  "cancelled",
			Message: "Recording was not saved and has been deleted",
			Data: map[string]interface{}{
				"recording_id":  decision.RecordingID,
				"samples_count": len(recording.Samples),
			},
		}, nil
	}

	savedAt := time.Now().UTC()
	recording.SavedAt = &savedAt
	recording.Status = models.StatusSaved

	if err := s.dbRepo.SaveRecording(ctx, recording); err != nil {
		return nil, fmt.Errorf("failed to save to database: %w", err)
	}

	if err := s.cacheRepo.SaveRecording(ctx, recording); err != nil {
		log.Warn().Err(err).Msg("failed to update recording status in cache")
	}

	log.Info().Int("samples", len(recording.Samples)).Msg("recording saved to database")

	return &models.DecisionResponse{
		Status:  models.StatusSaved,
		Message: "Recording successfully saved to database",
		Data: map[string]interface{}{
			"recording_id":  recording.RecordingID,
			"samples_count": len(recording.Samples),
			"created_at":    recording.CreatedAt,
			"saved_at":      savedAt,
		},
	}, nil
}

// GetRecording ищет запись в кеше, затем в базе
func (s *AnalysisService) GetRecording(ctx context.Context, recordingID string) (*models.Recording, error) {
	if recordingID == "" {
		return nil, models.ErrEmptyRecordingID
	}

	recording, err := s.cacheRepo.GetRecording(ctx, recordingID)
	if err == nil {
		return recording, nil
	}
	if !errors.Is(err, models.ErrRecordingNotFound) {
		s.logger.Warn().Err(err).Str("recording_id", recordingID).Msg("cache lookup failed, trying database")
	}

	recording, dbErr := s.dbRepo.GetRecording(ctx, recordingID)
	if dbErr != nil {
		if errors.Is(dbErr, models.ErrRecordingNotFound) {
			return nil, dbErr
		}
		return nil, fmt.Errorf("failed to get recording: %w", dbErr)
	}
	return recording, nil
}

// DeleteRecording удаляет запись из кеша и базы
func (s *AnalysisService) DeleteRecording(ctx context.Context, recordingID string) error {
	if recordingID == "" {
		return models.ErrEmptyRecordingID
	}

	found := false

	err := s.cacheRepo.DeleteRecording(ctx, recordingID)
	switch {
	case err == nil:
		found = true
	case !errors.Is(err, models.ErrRecordingNotFound):
		return fmt.Errorf("failed to delete recording from cache: %w", err)
	}

	err = s.dbRepo.DeleteRecording(ctx, recordingID)
	switch {
	case err == nil:
		found = true
	case !errors.Is(err, models.ErrRecordingNotFound):
		return fmt.Errorf("failed to delete recording from database: %w", err)
	}

	if !found {
		return fmt.Errorf("%w: %s", models.ErrRecordingNotFound, recordingID)
	}

	s.logger.Info().Str("recording_id", recordingID).Msg("recording deleted")
	return nil
}

// Rules возвращает активную таблицу классификации
func (s *AnalysisService) Rules() contraction.RuleTable {
	return s.analyzer.Rules()
}

func (s *AnalysisService) Stats() map[string]interface{} {
	return map[string]interface{}{
		"cache": s.cacheRepo.GetStats(),
	}
}

func (s *AnalysisService) publish(response *models.AnalysisResponse) {
	if s.notifier != nil {
		s.notifier.PublishAnalysis(response)
	}
}

func isZeroParams(p contraction.Params) bool {
	return p.MinHeight == nil && p.MinDistanceSamples == nil && p.MinDistanceSeconds == nil
}
