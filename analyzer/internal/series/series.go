package series

import (
	"math"
	"sort"
)

// Sample представляет одно наблюдение UC-канала
type Sample struct {
	TimeSeconds float64 `json:"time_sec"`
	Amplitude   float64 `json:"value"`
}

// Series - упорядоченный по времени ряд сэмплов, после загрузки только для чтения
type Series struct {
	samples []Sample
}

// FromSamples создает ряд из готовых сэмплов с той же проверкой оси времени, что и Load
func FromSamples(samples []Sample) (*Series, error) {
	prev := 0.0
	for i, s := range samples {
		if err := checkTime(s.TimeSeconds, prev, i > 0); err != nil {
			return nil, &ParseError{Line: i + 1, Column: "time", Err: err}
		}
		prev = s.TimeSeconds
	}

	copied := make([]Sample, len(samples))
	copy(copied, samples)
	return &Series{samples: copied}, nil
}

func (s *Series) Len() int {
	return len(s.samples)
}

// Samples возвращает копию сэмплов
func (s *Series) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

func (s *Series) Times() []float64 {
	out := make([]float64, len(s.samples))
	for i, sample := range s.samples {
		out[i] = sample.TimeSeconds
	}
	return out
}

func (s *Series) Amplitudes() []float64 {
	out := make([]float64, len(s.samples))
	for i, sample := range s.samples {
		out[i] = sample.Amplitude
	}
	return out
}

// SamplingInterval возвращает медиану разностей соседних отметок времени.
// Для ряда короче двух сэмплов интервал не определен.
func (s *Series) SamplingInterval() (float64, bool) {
	if len(s.samples) < 2 {
		return 0, false
	}

	deltas := make([]float64, len(s.samples)-1)
	for i := 1; i < len(s.samples); i++ {
		deltas[i-1] = s.samples[i].TimeSeconds - s.samples[i-1].TimeSeconds
	}
	sort.Float64s(deltas)

	mid := len(deltas) / 2
	if len(deltas)%2 == 1 {
		return deltas[mid], true
	}
	return (deltas[mid-1] + deltas[mid]) / 2, true
}

// Duration возвращает длительность записи в секундах
func (s *Series) Duration() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1].TimeSeconds - s.samples[0].TimeSeconds
}

func checkTime(t, prev float64, hasPrev bool) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return ErrInvalidTime
	}
	if t < 0 {
		return ErrNegativeTime
	}
	if hasPrev && t < prev {
		return ErrTimeNotMonotonic
	}
	return nil
}
