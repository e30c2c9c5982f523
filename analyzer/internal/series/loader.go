package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultTimeColumn      = "time"
	DefaultAmplitudeColumn = "UC"
)

// LoadOptions задает имена колонок входной таблицы
type LoadOptions struct {
	TimeColumn      string
	AmplitudeColumn string
}

func (o LoadOptions) withDefaults() LoadOptions {
	if strings.TrimSpace(o.TimeColumn) == "" {
		o.TimeColumn = DefaultTimeColumn
	}
	if strings.TrimSpace(o.AmplitudeColumn) == "" {
		o.AmplitudeColumn = DefaultAmplitudeColumn
	}
	return o
}

// LoadFile открывает CSV файл и загружает из него ряд
func LoadFile(path string, opts LoadOptions) (*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer file.Close()

	return Load(file, opts)
}

// Load разбирает CSV с заголовком. Колонки времени (секунды) и амплитуды
// проверяются сразу по заголовку, до чтения данных; остальные колонки игнорируются.
func Load(r io.Reader, opts LoadOptions) (*Series, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	ampIdx, ok := columnIndex(header, opts.AmplitudeColumn)
	if !ok {
		return nil, &MissingColumnError{Column: opts.AmplitudeColumn, Header: header}
	}
	timeIdx, ok := columnIndex(header, opts.TimeColumn)
	if !ok {
		return nil, &MissingColumnError{Column: opts.TimeColumn, Header: header}
	}

	samples := make([]Sample, 0, 1024)
	prev := 0.0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		t, err := parseCell(record, timeIdx)
		if err != nil {
			return nil, &ParseError{Line: line, Column: opts.TimeColumn, Err: err}
		}
		if err := checkTime(t, prev, len(samples) > 0); err != nil {
			return nil, &ParseError{Line: line, Column: opts.TimeColumn, Err: err}
		}

		v, err := parseCell(record, ampIdx)
		if err != nil {
			return nil, &ParseError{Line: line, Column: opts.AmplitudeColumn, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{Line: line, Column: opts.AmplitudeColumn, Err: ErrInvalidAmplitude}
		}

		samples = append(samples, Sample{TimeSeconds: t, Amplitude: v})
		prev = t
	}

	return &Series{samples: samples}, nil
}

func columnIndex(header []string, name string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i, true
		}
	}
	return -1, false
}

func parseCell(record []string, idx int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("row has only %d columns", len(record))
	}
	raw := strings.TrimSpace(record[idx])
	if raw == "" {
		return 0, errors.New("empty value")
	}
	return strconv.ParseFloat(raw, 64)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
