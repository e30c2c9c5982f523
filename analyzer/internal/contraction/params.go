package contraction

import (
	"fmt"
	"math"
)

// Params - параметры поиска пиков. Отсутствующее значение (nil) означает отсутствие ограничения.
type Params struct {
	MinHeight          *float64 `json:"min_height,omitempty"`
	MinDistanceSamples *float64 `json:"min_distance_samples,omitempty"`
	MinDistanceSeconds *float64 `json:"min_distance_sec,omitempty"`
}

// ParamError возвращается при некорректных параметрах до начала поиска пиков
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// Validate проверяет параметры синхронно, без молчаливого исправления значений
func (p Params) Validate() error {
	if p.MinHeight != nil && !isFinite(*p.MinHeight) {
		return &ParamError{Field: "min_height", Reason: "must be a finite number"}
	}

	if p.MinDistanceSamples != nil && p.MinDistanceSeconds != nil {
		return &ParamError{Field: "min_distance", Reason: "set either min_distance_samples or min_distance_sec, not both"}
	}

	if p.MinDistanceSamples != nil {
		d := *p.MinDistanceSamples
		if !isFinite(d) {
			return &ParamError{Field: "min_distance_samples", Reason: "must be a finite number"}
		}
		if d < 1 {
			return &ParamError{Field: "min_distance_samples", Reason: fmt.Sprintf("must be >= 1, got %g", d)}
		}
	}

	if p.MinDistanceSeconds != nil {
		d := *p.MinDistanceSeconds
		if !isFinite(d) {
			return &ParamError{Field: "min_distance_sec", Reason: "must be a finite number"}
		}
		if d <= 0 {
			return &ParamError{Field: "min_distance_sec", Reason: fmt.Sprintf("must be > 0, got %g", d)}
		}
	}

	return nil
}

// distanceSamples переводит ограничение на расстояние в сэмплы; 0 - без ограничения
func (p Params) distanceSamples(dt float64) float64 {
	switch {
	case p.MinDistanceSamples != nil:
		return *p.MinDistanceSamples
	case p.MinDistanceSeconds != nil && dt > 0:
		// округление гасит шум деления вроде 120.00000000000001 перед ceil
		samples := math.Round(*p.MinDistanceSeconds/dt*1e9) / 1e9
		return math.Max(1, samples)
	default:
		return 0
	}
}

// Float возвращает указатель на значение, удобно для заполнения Params
func Float(v float64) *float64 {
	return &v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
