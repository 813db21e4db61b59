package formulas

import (
	"math"
	"testing"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   []*float64
	}{
		{
			name:   "basic window",
			prices: []float64{1, 2, 3, 4, 5},
			period: 3,
			want:   []*float64{nil, nil, f(2), f(3), f(4)},
		},
		{
			name:   "period equals length",
			prices: []float64{2, 4, 6},
			period: 3,
			want:   []*float64{nil, nil, f(4)},
		},
		{
			name:   "insufficient data",
			prices: []float64{10, 20},
			period: 5,
			want:   []*float64{nil, nil},
		},
		{
			name:   "empty input",
			prices: nil,
			period: 3,
			want:   []*float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.prices, tt.period)
			assertSeriesEqual(t, tt.want, got)
		})
	}
}

func TestEMASeries_SeedsWithSimpleAverage(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	got := EMASeries(prices, 3)

	if got[0] != nil || got[1] != nil {
		t.Fatal("expected nil before seed index")
	}

	// Seed at index 2 is the SMA of the first 3 prices
	if *got[2] != 2.0 {
		t.Errorf("expected seed 2.0, got %v", *got[2])
	}

	// k = 2/(3+1) = 0.5; ema_3 = 4*0.5 + 2*0.5 = 3
	if math.Abs(*got[3]-3.0) > 1e-9 {
		t.Errorf("expected ema 3.0 at index 3, got %v", *got[3])
	}
	// ema_4 = 5*0.5 + 3*0.5 = 4
	if math.Abs(*got[4]-4.0) > 1e-9 {
		t.Errorf("expected ema 4.0 at index 4, got %v", *got[4])
	}
}

func TestEMASeries_InsufficientData(t *testing.T) {
	got := EMASeries([]float64{1, 2}, 10)
	for i, v := range got {
		if v != nil {
			t.Errorf("expected nil at index %d", i)
		}
	}
}

func f(v float64) *float64 { return &v }

func assertSeriesEqual(t *testing.T, want, got []*float64) {
	t.Helper()

	if len(want) != len(got) {
		t.Fatalf("length mismatch: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		switch {
		case want[i] == nil && got[i] == nil:
		case want[i] == nil || got[i] == nil:
			t.Errorf("index %d: want %v, got %v", i, ptrStr(want[i]), ptrStr(got[i]))
		case math.Abs(*want[i]-*got[i]) > 1e-9:
			t.Errorf("index %d: want %v, got %v", i, *want[i], *got[i])
		}
	}
}

func ptrStr(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
