package synth

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
)

// fwhmToSigma переводит ширину на половине высоты в сигму гауссианы
var fwhmToSigma = 1 / (2 * math.Sqrt(2*math.Ln2))

// Bump - одна синтетическая схватка в форме гауссианы
type Bump struct {
	CenterSec float64
	Peak      float64
	FWHMSec   float64
}

// Config описывает синтетическую запись UC
type Config struct {
	Duration       time.Duration
	SampleInterval time.Duration
	Baseline       float64
	Noise          float64 // стандартное отклонение гауссова шума, 0 - без шума
	Seed           int64
	Contractions   []Bump
}

// Ошибки конфигурации
var (
	ErrInvalidSampleInterval = errors.New("sample interval must be positive")
	ErrInvalidDuration       = errors.New("duration must not be negative")
	ErrInvalidBump           = errors.New("contraction width must be positive")
)

// Generate строит равномерно дискретизированный ряд. Одинаковый Config
// всегда дает одинаковый результат.
func Generate(cfg Config) ([]series.Sample, error) {
	if cfg.SampleInterval <= 0 {
		return nil, ErrInvalidSampleInterval
	}
	if cfg.Duration < 0 {
		return nil, ErrInvalidDuration
	}
	for _, b := range cfg.Contractions {
		if b.FWHMSec <= 0 {
			return nil, fmt.Errorf("%w: center=%.1fs", ErrInvalidBump, b.CenterSec)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	dt := cfg.SampleInterval.Seconds()
	n := int(cfg.Duration/cfg.SampleInterval) + 1

	samples := make([]series.Sample, n)
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		v := cfg.Baseline
		for _, b := range cfg.Contractions {
			sigma := b.FWHMSec * fwhmToSigma
			d := t - b.CenterSec
			v += b.Peak * math.Exp(-d*d/(2*sigma*sigma))
		}
		if cfg.Noise > 0 {
			v += rng.NormFloat64() * cfg.Noise
		}
		samples[i] = series.Sample{TimeSeconds: t, Amplitude: math.Max(0, v)}
	}

	return samples, nil
}

// PlanConfig задает случайное расписание схваток
type PlanConfig struct {
	Duration    time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
	Width       time.Duration // длительность схватки на половине высоты
	Peak        float64
	Seed        int64
}

// Plan раскладывает схватки по записи со случайными промежутками в [MinInterval, MaxInterval]
func Plan(cfg PlanConfig) []Bump {
	if cfg.MinInterval <= 0 || cfg.Width <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	bumps := make([]Bump, 0)

	next := randomDuration(rng, cfg.MinInterval, cfg.MaxInterval)
	for next+cfg.Width < cfg.Duration {
		bumps = append(bumps, Bump{
			CenterSec: next.Seconds(),
			Peak:      cfg.Peak,
			FWHMSec:   cfg.Width.Seconds(),
		})
		next += randomDuration(rng, cfg.MinInterval, cfg.MaxInterval)
	}

	return bumps
}

func randomDuration(rng *rand.Rand, min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}

// WriteCSV пишет сэмплы в формате, который понимает series.Load
func WriteCSV(w io.Writer, samples []series.Sample) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{series.DefaultTimeColumn, series.DefaultAmplitudeColumn}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range samples {
		record := []string{
			strconv.FormatFloat(s.TimeSeconds, 'f', -1, 64),
			strconv.FormatFloat(s.Amplitude, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
