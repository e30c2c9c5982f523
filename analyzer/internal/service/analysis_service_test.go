package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/internal/repository"
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
	"github.com/Krimson/ctg-contractions/analyzer/internal/synth"
	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

type recordingNotifier struct {
	mu        sync.Mutex
	responses []*models.AnalysisResponse
}

func (n *recordingNotifier) PublishAnalysis(response *models.AnalysisResponse) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.responses = append(n.responses, response)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.responses)
}

type failingDB struct {
	*repository.MemoryStore
}

func (f failingDB) SaveRecording(ctx context.Context, recording *models.Recording) error {
	return errors.New("connection refused")
}

func twoContractionCSV(t *testing.T) *bytes.Buffer {
	t.Helper()

	samples, err := synth.Generate(synth.Config{
		Duration:       10 * time.Minute,
		SampleInterval: 500 * time.Millisecond,
		Baseline:       5,
		Contractions: []synth.Bump{
			{CenterSec: 120, Peak: 40, FWHMSec: 50},
			{CenterSec: 360, Peak: 40, FWHMSec: 50},
		},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var buf bytes.Buffer
	if err := synth.WriteCSV(&buf, samples); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	return &buf
}

func newTestService(db DBRepository) (*AnalysisService, *repository.MemoryStore, *recordingNotifier) {
	cache := repository.NewMemoryStore(time.Hour)
	if db == nil {
		db = repository.NewMemoryStore(0)
	}

	svc := NewAnalysisService(
		contraction.NewAnalyzer(),
		cache,
		db,
		WithDefaults(contraction.Params{MinHeight: contraction.Float(20), MinDistanceSeconds: contraction.Float(60)}),
	)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	return svc, cache, notifier
}

func TestAnalysisService_UploadCSV(t *testing.T) {
	ctx := context.Background()
	svc, cache, notifier := newTestService(nil)

	resp, err := svc.UploadCSV(ctx, twoContractionCSV(t), "", "night shift")
	if err != nil {
		t.Fatalf("UploadCSV failed: %v", err)
	}

	if resp.RecordingID == "" {
		t.Error("Expected generated recording ID")
	}
	if resp.Status != models.StatusPending || resp.SampleCount != 1201 {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if len(resp.Analysis.Events) != 2 {
		t.Errorf("Expected 2 contractions, got %d", len(resp.Analysis.Events))
	}

	cached, err := cache.GetRecording(ctx, resp.RecordingID)
	if err != nil {
		t.Fatalf("Recording not cached: %v", err)
	}
	if cached.Name != "night shift" || cached.Status != models.StatusPending {
		t.Errorf("Unexpected cached recording: %+v", cached)
	}

	if notifier.count() != 1 {
		t.Errorf("Expected 1 published analysis, got %d", notifier.count())
	}
}

func TestAnalysisService_UploadCSV_KeepsGivenID(t *testing.T) {
	svc, _, _ := newTestService(nil)

	resp, err := svc.UploadCSV(context.Background(), twoContractionCSV(t), "rec-42", "")
	if err != nil {
		t.Fatalf("UploadCSV failed: %v", err)
	}
	if resp.RecordingID != "rec-42" {
		t.Errorf("Expected rec-42, got %s", resp.RecordingID)
	}
}

func TestAnalysisService_UploadCSV_MissingColumn(t *testing.T) {
	svc, _, notifier := newTestService(nil)

	_, err := svc.UploadCSV(context.Background(), strings.NewReader("time,FHR\n0,140\n"), "rec-1", "")

	var missing *series.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingColumnError, got %v", err)
	}
	if notifier.count() != 0 {
		t.Error("Nothing must be published for a failed upload")
	}
}

func TestAnalysisService_Analyze(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newTestService(nil)

	upload, err := svc.UploadCSV(ctx, twoContractionCSV(t), "rec-1", "")
	if err != nil {
		t.Fatalf("UploadCSV failed: %v", err)
	}

	// расстояние больше промежутка между схватками оставляет одну
	resp, err := svc.Analyze(ctx, upload.RecordingID, contraction.Params{
		MinHeight:          contraction.Float(20),
		MinDistanceSeconds: contraction.Float(300),
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(resp.Analysis.Events) != 1 {
		t.Errorf("Expected 1 contraction, got %d", len(resp.Analysis.Events))
	}

	// пустые параметры заменяются параметрами по умолчанию
	resp, err = svc.Analyze(ctx, upload.RecordingID, contraction.Params{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(resp.Analysis.Events) != 2 {
		t.Errorf("Expected 2 contractions with defaults, got %d", len(resp.Analysis.Events))
	}
	if resp.Analysis.Params.MinHeight == nil || *resp.Analysis.Params.MinHeight != 20 {
		t.Errorf("Expected default params in result, got %+v", resp.Analysis.Params)
	}

	if notifier.count() != 3 {
		t.Errorf("Expected 3 published analyses, got %d", notifier.count())
	}
}

func TestAnalysisService_Analyze_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(nil)

	if _, err := svc.Analyze(ctx, "missing", contraction.Params{}); !errors.Is(err, models.ErrRecordingNotFound) {
		t.Errorf("Expected ErrRecordingNotFound, got %v", err)
	}

	svc.UploadCSV(ctx, twoContractionCSV(t), "rec-1", "")
	_, err := svc.Analyze(ctx, "rec-1", contraction.Params{MinDistanceSamples: contraction.Float(0.5)})

	var paramErr *contraction.ParamError
	if !errors.As(err, &paramErr) {
		t.Errorf("Expected ParamError, got %v", err)
	}
}

func TestAnalysisService_HandleDecision_Save(t *testing.T) {
	ctx := context.Background()
	db := repository.NewMemoryStore(0)
	svc, cache, _ := newTestService(db)

	svc.UploadCSV(ctx, twoContractionCSV(t), "rec-1", "")

	resp, err := svc.HandleDecision(ctx, &models.SaveDecision{RecordingID: "rec-1", Save: true})
	if err != nil {
		t.Fatalf("HandleDecision failed: %v", err)
	}
	if resp.Status != models.StatusSaved {
		t.Errorf("Expected saved, got %s", resp.Status)
	}

	stored, err := db.GetRecording(ctx, "rec-1")
	if err != nil {
		t.Fatalf("Recording not in database: %v", err)
	}
	if stored.Status != models.StatusSaved || stored.SavedAt == nil {
		t.Errorf("Unexpected stored recording: %+v", stored)
	}

	cached, _ := cache.GetRecording(ctx, "rec-1")
	if cached.Status != models.StatusSaved {
		t.Errorf("Expected cached status saved, got %s", cached.Status)
	}

	// после вытеснения из кеша запись берется из базы
	cache.DeleteRecording(ctx, "rec-1")
	if _, err := svc.Analyze(ctx, "rec-1", contraction.Params{}); err != nil {
		t.Errorf("Expected database fallback, got %v", err)
	}
}

func TestAnalysisService_HandleDecision_Discard(t *testing.T) {
	ctx := context.Background()
	db := repository.NewMemoryStore(0)
	svc, cache, _ := newTestService(db)

	svc.UploadCSV(ctx, twoContractionCSV(t), "rec-1", "")

	resp, err := svc.HandleDecision(ctx, &models.SaveDecision{RecordingID: "rec-1", Save: false})
	if err != nil {
		t.Fatalf("HandleDecision failed: %v", err)
	}
	if resp.Status != "cancelled" {
		t.Errorf("Expected cancelled, got %s", resp.Status)
	}

	if _, err := cache.GetRecording(ctx, "rec-1"); !errors.Is(err, models.ErrRecordingNotFound) {
		t.Errorf("Expected recording removed from cache, got %v", err)
	}
	if _, err := db.GetRecording(ctx, "rec-1"); !errors.Is(err, models.ErrRecordingNotFound) {
		t.Errorf("Discarded recording must not reach the database, got %v", err)
	}
}

func TestAnalysisService_HandleDecision_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(failingDB{repository.NewMemoryStore(0)})

	if _, err := svc.HandleDecision(ctx, &models.SaveDecision{}); !errors.Is(err, models.ErrEmptyRecordingID) {
		t.Errorf("Expected ErrEmptyRecordingID, got %v", err)
	}

	if _, err := svc.HandleDecision(ctx, &models.SaveDecision{RecordingID: "missing", Save: true}); !errors.Is(err, models.ErrRecordingNotFound) {
		t.Errorf("Expected ErrRecordingNotFound, got %v", err)
	}

	svc.UploadCSV(ctx, twoContractionCSV(t), "rec-1", "")
	_, err := svc.HandleDecision(ctx, &models.SaveDecision{RecordingID: "rec-1", Save: true})
	if err == nil || !strings.Contains(err.Error(), "failed to save to database") {
		t.Errorf("Expected database error, got %v", err)
	}
}

func TestAnalysisService_DeleteRecording(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(nil)

	svc.UploadCSV(ctx, twoContractionCSV(t), "rec-1", "")

	if err := svc.DeleteRecording(ctx, "rec-1"); err != nil {
		t.Fatalf("DeleteRecording failed: %v", err)
	}
	if err := svc.DeleteRecording(ctx, "rec-1"); !errors.Is(err, models.ErrRecordingNotFound) {
		t.Errorf("Expected ErrRecordingNotFound, got %v", err)
	}
	if _, err := svc.GetRecording(ctx, "rec-1"); !errors.Is(err, models.ErrRecordingNotFound) {
		t.Errorf("Expected ErrRecordingNotFound, got %v", err)
	}
}

func TestAnalysisService_Rules(t *testing.T) {
	svc, _, _ := newTestService(nil)

	if len(svc.Rules()) != len(contraction.DefaultRules()) {
		t.Errorf("Expected default rules, got %d", len(svc.Rules()))
	}
	if _, ok := svc.Stats()["cache"]; !ok {
		t.Error("Expected cache stats")
	}
}
