package utils

import (
	"math"
	"testing"
)

func TestFinite32(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		want   bool
	}{
		{"empty", nil, true},
		{"finite", []float32{0, -1.5, math.MaxFloat32}, true},
		{"nan", []float32{1, float32(math.NaN())}, false},
		{"inf", []float32{float32(math.Inf(-1))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finite32(tt.values...); got != tt.want {
				t.Errorf("Finite32(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("SKIRMISH_TEST_KEY", "")
	if got := GetEnvDefault("SKIRMISH_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("GetEnvDefault() = %q, want %q", got, "fallback")
	}

	t.Setenv("SKIRMISH_TEST_KEY", "set")
	if got := GetEnvDefault("SKIRMISH_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("GetEnvDefault() = %q, want %q", got, "set")
	}
}
