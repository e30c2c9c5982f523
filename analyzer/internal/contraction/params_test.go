package contraction

import (
	"errors"
	"math"
	"testing"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name      string
		params    Params
		wantField string
	}{
		{"empty", Params{}, ""},
		{"all set", Params{MinHeight: Float(5), MinDistanceSamples: Float(120)}, ""},
		{"seconds", Params{MinDistanceSeconds: Float(60)}, ""},
		{"negative height is allowed", Params{MinHeight: Float(-1)}, ""},
		{"one sample", Params{MinDistanceSamples: Float(1)}, ""},
		{"nan height", Params{MinHeight: Float(math.NaN())}, "min_height"},
		{"inf height", Params{MinHeight: Float(math.Inf(1))}, "min_height"},
		{"zero distance", Params{MinDistanceSamples: Float(0)}, "min_distance_samples"},
		{"fractional below one", Params{MinDistanceSamples: Float(0.5)}, "min_distance_samples"},
		{"negative distance", Params{MinDistanceSamples: Float(-3)}, "min_distance_samples"},
		{"zero seconds", Params{MinDistanceSeconds: Float(0)}, "min_distance_sec"},
		{"nan seconds", Params{MinDistanceSeconds: Float(math.NaN())}, "min_distance_sec"},
		{"both distances", Params{MinDistanceSamples: Float(10), MinDistanceSeconds: Float(5)}, "min_distance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			var paramErr *ParamError
			if !errors.As(err, &paramErr) {
				t.Fatalf("Expected ParamError, got %v", err)
			}
			if paramErr.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, paramErr.Field)
			}
		})
	}
}

func TestParams_DistanceSamples(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		dt     float64
		want   float64
	}{
		{"unset", Params{}, 0.5, 0},
		{"samples", Params{MinDistanceSamples: Float(120)}, 0.5, 120},
		{"seconds", Params{MinDistanceSeconds: Float(60)}, 0.5, 120},
		{"seconds with inexact interval", Params{MinDistanceSeconds: Float(12)}, 0.1, 120},
		{"shorter than one sample", Params{MinDistanceSeconds: Float(0.1)}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.distanceSamples(tt.dt); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
