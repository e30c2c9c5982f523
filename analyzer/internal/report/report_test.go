package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
)

func sampleResult() *contraction.Result {
	dt := 0.5
	interval := 2.5
	return &contraction.Result{
		SampleCount:             1201,
		SamplingIntervalSeconds: &dt,
		Events: []contraction.Event{
			{TimeMinutes: 3.3333, DurationMinutes: 70.0 / 60, Amplitude: 40, Category: contraction.LabelTransition},
			{TimeMinutes: 5.8333, IntervalMinutes: &interval, DurationMinutes: 65.0 / 60, Amplitude: 35, Category: contraction.LabelExpulsion},
		},
		Summary: map[contraction.Label]int{
			contraction.LabelTransition: 1,
			contraction.LabelExpulsion:  1,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"table", "csv", "json"} {
		if f, err := ParseFormat(name); err != nil || string(f) != name {
			t.Errorf("ParseFormat(%q) = %q, %v", name, f, err)
		}
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"samples:", "1201", "contractions:", "interval_min", "Übergangswehen", "Austreibungswehen", "2.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}

	// у первой схватки интервала нет
	lines := strings.Split(out, "\n")
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 2 && fields[0] == "1" && fields[2] != "-" {
			t.Errorf("Expected '-' for the first interval, got %q", line)
		}
	}
}

func TestWriteTable_NoEvents(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, &contraction.Result{Events: []contraction.Event{}, Summary: map[contraction.Label]int{}})
	if err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	if strings.Contains(buf.String(), "interval_min") {
		t.Errorf("Expected no event table, got:\n%s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV back: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(records))
	}
	if records[0][1] != "interval_min" {
		t.Errorf("Unexpected header: %v", records[0])
	}
	if records[1][1] != "" {
		t.Errorf("Expected empty interval for the first event, got %q", records[1][1])
	}
	if records[2][1] != "2.5" {
		t.Errorf("Expected interval 2.5, got %q", records[2][1])
	}
	if records[2][4] != string(contraction.LabelExpulsion) {
		t.Errorf("Expected %q, got %q", contraction.LabelExpulsion, records[2][4])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), FormatJSON); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	events := decoded["events"].([]interface{})
	if first := events[0].(map[string]interface{}); first["interval_minutes"] != nil {
		t.Errorf("Expected null interval, got %v", first["interval_minutes"])
	}
}

func TestSortedLabels(t *testing.T) {
	got := sortedLabels(map[contraction.Label]int{"b": 1, "a": 1, "c": 3})
	want := []contraction.Label{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}
