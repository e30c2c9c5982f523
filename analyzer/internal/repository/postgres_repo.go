package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS recordings (
    recording_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    samples JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    saved_at TIMESTAMPTZ,
    status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recordings_created_at ON recordings(created_at);
`

// PostgreSQLRepository хранит сохраненные записи. Результаты анализа не хранятся.
type PostgreSQLRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgreSQLRepository(ctx context.Context, connStr string, logger zerolog.Logger) (*PostgreSQLRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgreSQLRepository{
		db:     db,
		logger: logger.With().Str("component", "postgres").Logger(),
	}, nil
}

func (r *PostgreSQLRepository) SaveRecording(ctx context.Context, recording *models.Recording) error {
	samplesJSON, err := json.Marshal(recording.Samples)
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}

	query := `
    INSERT INTO recordings (recording_id, name, samples, created_at, saved_at, status)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (recording_id)
    DO UPDATE SET name = $2, samples = $3, saved_at = $5, status = $6
    `

	_, err = r.db.ExecContext(ctx, query,
		recording.RecordingID,
		recording.Name,
		samplesJSON,
		recording.CreatedAt,
		recording.SavedAt,
		recording.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}

	r.logger.Info().
		Str("recording_id", recording.RecordingID).
		Int("samples", len(recording.Samples)).
		Msg("recording saved to PostgreSQL")
	return nil
}

func (r *PostgreSQLRepository) GetRecording(ctx context.Context, recordingID string) (*models.Recording, error) {
	query := `
    SELECT recording_id, name, samples, created_at, saved_at, status
    FROM recordings
    WHERE recording_id = $1
    `

	var (
		recording   models.Recording
		samplesJSON []byte
		savedAt     sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, recordingID).Scan(
		&recording.RecordingID,
		&recording.Name,
		&samplesJSON,
		&recording.CreatedAt,
		&savedAt,
		&recording.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrRecordingNotFound, recordingID)
		}
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}

	if err := json.Unmarshal(samplesJSON, &recording.Samples); err != nil {
		return nil, fmt.Errorf("failed to unmarshal samples: %w", err)
	}
	if recording.Samples == nil {
		recording.Samples = []series.Sample{}
	}
	if savedAt.Valid {
		recording.SavedAt = &savedAt.Time
	}

	return &recording, nil
}

func (r *PostgreSQLRepository) DeleteRecording(ctx context.Context, recordingID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE recording_id = $1`, recordingID)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", models.ErrRecordingNotFound, recordingID)
	}
	return nil
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	return r.db.Close()
}
