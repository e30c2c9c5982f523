package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore - хранилище записей в памяти процесса.
// Используется вместо Redis и PostgreSQL при USE_MEMORY_STORE и в тестах.
// ttl == 0 означает хранение без срока.
type MemoryStore struct {
	recordings map[string]memoryEntry
	mutex      sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		recordings: make(map[string]memoryEntry),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *MemoryStore) SaveRecording(ctx context.Context, recording *models.Recording) error {
	data, err := json.Marshal(recording)
	if err != nil {
		return fmt.Errorf("failed to marshal recording: %w", err)
	}

	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mutex.Lock()
	m.recordings[recording.RecordingID] = entry
	m.mutex.Unlock()
	return nil
}

func (m *MemoryStore) GetRecording(ctx context.Context, recordingID string) (*models.Recording, error) {
	m.mutex.RLock()
	entry, exists := m.recordings[recordingID]
	m.mutex.RUnlock()

	if !exists || m.expired(entry) {
		return nil, fmt.Errorf("%w: %s", models.ErrRecordingNotFound, recordingID)
	}

	var recording models.Recording
	if err := json.Unmarshal(entry.data, &recording); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording: %w", err)
	}
	return &recording, nil
}

func (m *MemoryStore) DeleteRecording(ctx context.Context, recordingID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.recordings[recordingID]
	if !exists || m.expired(entry) {
		return fmt.Errorf("%w: %s", models.ErrRecordingNotFound, recordingID)
	}

	delete(m.recordings, recordingID)
	return nil
}

func (m *MemoryStore) CheckConnection(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// GetStats удаляет просроченные записи и возвращает количество активных
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ids := make([]string, 0, len(m.recordings))
	for id, entry := range m.recordings {
		if m.expired(entry) {
			delete(m.recordings, id)
			continue
		}
		ids = append(ids, id)
	}

	return map[string]interface{}{
		"active_recordings": len(ids),
		"recording_ids":     ids,
		"ttl":               m.ttl.String(),
	}
}

func (m *MemoryStore) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.recordings = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)
}
