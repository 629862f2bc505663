package analysis

import (
	"math"
	"testing"
)

func TestDominantPeriod(t *testing.T) {
	const dt = 10.0
	const period = 5400.0

	data := make([]float64, 1080)
	for i := range data {
		ts := float64(i) * dt
		data[i] = 3 + 50*math.Sin(2*math.Pi*ts/period) + 5*math.Sin(2*math.Pi*ts/600)
	}

	got, err := DominantPeriod(data, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-period) > 1e-6 {
		t.Errorf("expected period %f, got %f", period, got)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	data := []float64{4, 4, 4, 4, 4, 4, 4, 4}
	ps := PowerSpectrum(data)
	if len(ps) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(ps))
	}
	for i, p := range ps {
		if p > 1e-12 {
			t.Errorf("bin %d: expected zero power, got %g", i, p)
		}
	}
}

func TestDominantPeriodErrors(t *testing.T) {
	if _, err := DominantPeriod([]float64{1}, 1); err == nil {
		t.Error("expected error for a single sample")
	}
	if _, err := DominantPeriod([]float64{1, 2, 3}, 0); err == nil {
		t.Error("expected error for zero interval")
	}
	if _, err := DominantPeriod([]float64{2, 2, 2, 2}, 1); err == nil {
		t.Error("expected error for a constant series")
	}
}
