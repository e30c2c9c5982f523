package contraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
)

func TestAnalyzer_Analyze(t *testing.T) {
	s := triangleSeries(t, 600, 0.5,
		triangle{center: 200, peak: 40, fwhm: 70},
		triangle{center: 350, peak: 35, fwhm: 65},
	)

	result, err := NewAnalyzer().Analyze(s, Params{MinHeight: Float(5)})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.SampleCount != 1201 {
		t.Errorf("Expected 1201 samples, got %d", result.SampleCount)
	}
	if result.SamplingIntervalSeconds == nil || *result.SamplingIntervalSeconds != 0.5 {
		t.Errorf("Expected sampling interval 0.5, got %v", result.SamplingIntervalSeconds)
	}
	if len(result.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(result.Events))
	}
	if result.Summary[LabelTransition] != 1 || result.Summary[LabelExpulsion] != 1 {
		t.Errorf("Unexpected summary: %v", result.Summary)
	}
}

func TestAnalyzer_CustomRules(t *testing.T) {
	rules := RuleTable{
		{Interval: Range{0, math.Inf(1)}, Duration: Range{0, math.Inf(1)}, Label: "any"},
	}
	a := NewAnalyzer(WithRules(rules))

	rules[0].Label = "changed"
	if a.Rules()[0].Label != "any" {
		t.Error("Analyzer must keep its own copy of the rules")
	}

	s := triangleSeries(t, 120, 1, triangle{center: 60, peak: 10, fwhm: 20})
	result, err := a.Analyze(s, Params{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].Category != "any" {
		t.Errorf("Expected one event labelled any, got %+v", result.Events)
	}
}

func TestAnalyzer_InsufficientDataIsLogged(t *testing.T) {
	var buf bytes.Buffer
	a := NewAnalyzer(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	empty, _ := series.FromSamples(nil)
	result, err := a.Analyze(empty, Params{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.SampleCount != 0 || result.SamplingIntervalSeconds != nil {
		t.Errorf("Unexpected result for empty series: %+v", result)
	}
	if result.Events == nil || len(result.Events) != 0 {
		t.Errorf("Expected empty events, got %v", result.Events)
	}
	if !strings.Contains(buf.String(), "insufficient data") {
		t.Errorf("Expected insufficient data log, got %q", buf.String())
	}
}

func TestAnalyzer_InvalidParams(t *testing.T) {
	s := triangleSeries(t, 60, 1, triangle{center: 30, peak: 10, fwhm: 10})

	_, err := NewAnalyzer().Analyze(s, Params{MinDistanceSamples: Float(1), MinDistanceSeconds: Float(1)})

	var paramErr *ParamError
	if !errors.As(err, &paramErr) {
		t.Fatalf("Expected ParamError, got %v", err)
	}
}

func TestResult_JSON(t *testing.T) {
	s := triangleSeries(t, 600, 0.5,
		triangle{center: 200, peak: 40, fwhm: 70},
		triangle{center: 350, peak: 35, fwhm: 65},
	)
	result, _ := NewAnalyzer().Analyze(s, Params{MinHeight: Float(5)})

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Events []struct {
			IntervalMinutes *float64 `json:"interval_minutes"`
			Category        string   `json:"category"`
		} `json:"events"`
		Summary map[string]int `json:"summary"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Events[0].IntervalMinutes != nil {
		t.Error("Expected null interval for the first event")
	}
	if decoded.Events[1].Category != string(LabelExpulsion) {
		t.Errorf("Expected %q, got %q", LabelExpulsion, decoded.Events[1].Category)
	}
	if decoded.Summary["Übergangswehen"] != 1 {
		t.Errorf("Unexpected summary: %v", decoded.Summary)
	}
}
