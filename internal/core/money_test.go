package core

import (
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{"dot separator", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"rounds down on third decimal", "12.344", 1234, false},
		{"rounds up on third decimal", "12.345", 1235, false},
		{"integer", "7", 700, false},
		{"leading dot", ".50", 50, false},
		{"zero is allowed", "0", 0, false},
		{"empty", "", 0, true},
		{"negative rejected", "-5.00", 0, true},
		{"plus sign rejected", "+5.00", 0, true},
		{"letters rejected", "12a.00", 0, true},
		{"two dots rejected", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromUnits(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int64
	}{
		{"simple", 12.34, 1234},
		{"rounds half up", 0.005, 1},
		{"negative", -3.5, -350},
		{"NaN collapses to zero", math.NaN(), 0},
		{"Inf collapses to zero", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromUnits(tt.in); got.Cents != tt.want {
				t.Errorf("FromUnits(%v) = %d cents, want %d", tt.in, got.Cents, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{-50, "-0.50"},
		{0, "0.00"},
		{100000, "1000.00"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
