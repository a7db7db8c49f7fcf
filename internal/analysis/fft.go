package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data after removing its mean. Bin k corresponds to
// frequency k*sampleRate/len(data).
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	spec := fft.FFTReal(Detrend(data))
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency of the strongest non-DC bin and
// its magnitude. sampleRate is in samples per second.
func DominantFrequency(data []float64, sampleRate float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) * sampleRate / float64(len(data)), ps[best]
}

// Detrend returns data with its mean subtracted.
func Detrend(data []float64) []float64 {
	mean := Describe(data).Mean
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	Last  float64
}

func Describe(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(data), Min: data[0], Max: data[0], Last: data[len(data)-1]}
	sum := 0.0
	for _, v := range data {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(data))
	ss := 0.0
	for _, v := range data {
		ss += (v - s.Mean) * (v - s.Mean)
	}
	s.Std = math.Sqrt(ss / float64(len(data)))
	return s
}
