package analysis

import (
	"math"
	"testing"
)

func TestDominantFrequency(t *testing.T) {
	const (
		n    = 256
		rate = 64.0
		freq = 4.0
	)
	data := make([]float64, n)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)/rate)
	}

	f, power := DominantFrequency(data, rate)
	if math.Abs(f-freq) > 1e-9 {
		t.Errorf("expected %f Hz, got %f", freq, f)
	}
	if power <= 0 {
		t.Error("expected positive power")
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	data := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	ps := PowerSpectrum(data)
	if len(ps) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(ps))
	}
	for k, v := range ps {
		if v > 1e-9 {
			t.Errorf("bin %d: expected 0 for constant signal, got %g", k, v)
		}
	}
}

func TestPowerSpectrumShort(t *testing.T) {
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("expected nil for a single sample")
	}
	if f, p := DominantFrequency(nil, 10); f != 0 || p != 0 {
		t.Error("expected zero for empty input")
	}
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{1, 2, 3, 4})
	if s.Count != 4 || s.Mean != 2.5 || s.Min != 1 || s.Max != 4 || s.Last != 4 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(1.25)) > 1e-12 {
		t.Errorf("expected std %f, got %f", math.Sqrt(1.25), s.Std)
	}
	if (Describe(nil) != Summary{}) {
		t.Error("expected zero summary for empty input")
	}
}
