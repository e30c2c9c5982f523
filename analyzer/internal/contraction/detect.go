package contraction

import (
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
)

// halfProminence - уровень измерения ширины пика
const halfProminence = 0.5

// Event - обнаруженная схватка. Секунды используются для классификации,
// минуты отдаются наружу.
type Event struct {
	PeakIndex       int      `json:"peak_index"`
	TimeSeconds     float64  `json:"time_sec"`
	TimeMinutes     float64  `json:"time_minutes"`
	IntervalSeconds *float64 `json:"interval_sec"`
	IntervalMinutes *float64 `json:"interval_minutes"`
	DurationSeconds float64  `json:"duration_sec"`
	DurationMinutes float64  `json:"duration_minutes"`
	Amplitude       float64  `json:"amplitude"`
	Prominence      float64  `json:"prominence"`
	Category        Label    `json:"category,omitempty"`
}

// Detect ищет схватки в UC-ряду. Ошибка возвращается только для некорректных параметров;
// ряд короче двух сэмплов или ряд без пиков дает пустой результат.
func Detect(s *series.Series, p Params) ([]Event, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	events := make([]Event, 0)
	if s == nil {
		return events, nil
	}

	dt, ok := s.SamplingInterval()
	if !ok {
		return events, nil
	}

	x := s.Amplitudes()
	times := s.Times()

	peaks := localMaxima(x)
	if p.MinHeight != nil {
		peaks = selectByHeight(x, peaks, *p.MinHeight)
	}
	if d := p.distanceSamples(dt); d > 0 {
		peaks = selectByDistance(x, peaks, d)
	}

	var prevTime float64
	for i, peak := range peaks {
		prom := peakProminence(x, peak)
		widthSamples := peakWidth(x, peak, prom, halfProminence)
		durationSec := widthSamples * dt

		ev := Event{
			PeakIndex:       peak,
			TimeSeconds:     times[peak],
			TimeMinutes:     times[peak] / 60,
			DurationSeconds: durationSec,
			DurationMinutes: durationSec / 60,
			Amplitude:       x[peak],
			Prominence:      prom.value,
		}

		if i > 0 {
			intervalSec := times[peak] - prevTime
			intervalMin := intervalSec / 60
			ev.IntervalSeconds = &intervalSec
			ev.IntervalMinutes = &intervalMin
		}

		events = append(events, ev)
		prevTime = times[peak]
	}

	return events, nil
}

// Classify присваивает каждой схватке метку первого подходящего правила.
// Входной срез не изменяется.
func Classify(events []Event, rules RuleTable) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		ev.Category = rules.Match(ev.IntervalSeconds, ev.DurationSeconds)
		out[i] = ev
	}
	return out
}

// Summarize считает количество схваток по категориям. Категории без схваток не попадают в результат.
func Summarize(events []Event) map[Label]int {
	summary := make(map[Label]int)
	for _, ev := range events {
		label := ev.Category
		if label == "" {
			label = LabelUnclassified
		}
		summary[label]++
	}
	return summary
}
