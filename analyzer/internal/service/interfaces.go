package service

import (
	"context"

	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

// CacheRepository хранит загруженные записи до решения о сохранении
type CacheRepository interface {
	SaveRecording(ctx context.Context, recording *models.Recording) error
	GetRecording(ctx context.Context, recordingID string) (*models.Recording, error)
	DeleteRecording(ctx context.Context, recordingID string) error
	GetStats() map[string]interface{}
	CheckConnection(ctx context.Context) error
	Close() error
}

// DBRepository - постоянное хранилище сохраненных записей
type DBRepository interface {
	SaveRecording(ctx context.Context, recording *models.Recording) error
	GetRecording(ctx context.Context, recordingID string) (*models.Recording, error)
	DeleteRecording(ctx context.Context, recordingID string) error
	Ping(ctx context.Context) error
	Close() error
}

// Notifier получает каждый готовый результат анализа
type Notifier interface {
	PublishAnalysis(response *models.AnalysisResponse)
}
