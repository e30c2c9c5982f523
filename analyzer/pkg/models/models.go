package models

import (
	"errors"
	"time"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
)

// Статусы записи
const (
	StatusPending = "pending"
	StatusSaved   = "saved"
)

// Recording - загруженный UC-ряд. Результаты анализа не хранятся, они пересчитываются.
type Recording struct {
	RecordingID string          `json:"recording_id"`
	Name        string          `json:"name,omitempty"`
	Samples     []series.Sample `json:"samples"`
	CreatedAt   time.Time       `json:"created_at"`
	SavedAt     *time.Time      `json:"saved_at,omitempty"`
	Status      string          `json:"status"`
}

// Series восстанавливает ряд из сохраненных сэмплов
func (r *Recording) Series() (*series.Series, error) {
	return series.FromSamples(r.Samples)
}

type SaveDecision struct {
	RecordingID string `json:"recording_id"`
	Save        bool   `json:"save"`
}

// AnalysisRequest - параметры анализа из тела запроса или websocket-сообщения
type AnalysisRequest struct {
	RecordingID string             `json:"recording_id,omitempty"`
	Params      contraction.Params `json:"params"`
}

type UploadResponse struct {
	RecordingID string              `json:"recording_id"`
	Status      string              `json:"status"`
	SampleCount int                 `json:"sample_count"`
	Analysis    *contraction.Result `json:"analysis"`
	Message     string              `json:"message,omitempty"`
}

type AnalysisResponse struct {
	RecordingID string              `json:"recording_id"`
	Analysis    *contraction.Result `json:"analysis"`
	AnalyzedAt  time.Time           `json:"analyzed_at"`
}

type DecisionResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Ошибки
var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrEmptyRecordingID  = errors.New("recording_id is required")
)
