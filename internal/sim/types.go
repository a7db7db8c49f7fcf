package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Metric aggregates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(m *cloth.Mesh, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed frame.
type Observer interface {
	OnFrame(frame int, t float64, m *cloth.Mesh)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frame int, t float64, m *cloth.Mesh)

func (f ObserverFunc) OnFrame(frame int, t float64, m *cloth.Mesh) { f(frame, t, m) }

type Config struct {
	Dt            float64
	SubSteps      int
	Gravity       mgl64.Vec3 // full per-frame gravity, divided across sub-steps
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		SubSteps:      20,
		Gravity:       mgl64.Vec3{0, -9.8, 0},
		ValidateState: true,
	}
}

// Sample is the per-frame summary kept in a Result.
type Sample struct {
	Frame         int     `json:"frame"`
	Time          float64 `json:"time"`
	KineticEnergy float64 `json:"kinetic_energy"`
	VelocityNorm  float64 `json:"velocity_norm"`
	MaxStrain     float64 `json:"max_strain"`
	LowestY       float64 `json:"lowest_y"`
	CentroidY     float64 `json:"centroid_y"`
}

func sample(frame int, t float64, m *cloth.Mesh) Sample {
	return Sample{
		Frame:         frame,
		Time:          t,
		KineticEnergy: m.KineticEnergy(),
		VelocityNorm:  m.VelocityNorm(),
		MaxStrain:     m.MaxStrain(),
		LowestY:       m.LowestPoint().Y(),
		CentroidY:     m.Centroid().Y(),
	}
}

type Result struct {
	Samples     []Sample
	Metrics     map[string]float64
	Errors      []error
	FramesTaken int
	Time        float64
}

// Series extracts one named column from the samples.
func (r *Result) Series(name string) ([]float64, error) {
	var get func(Sample) float64
	switch name {
	case "kinetic_energy", "energy":
		get = func(s Sample) float64 { return s.KineticEnergy }
	case "velocity_norm":
		get = func(s Sample) float64 { return s.VelocityNorm }
	case "max_strain", "strain":
		get = func(s Sample) float64 { return s.MaxStrain }
	case "lowest_y":
		get = func(s Sample) float64 { return s.LowestY }
	case "centroid_y":
		get = func(s Sample) float64 { return s.CentroidY }
	default:
		return nil, fmt.Errorf("unknown series: %s", name)
	}
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = get(s)
	}
	return out, nil
}

// SeriesNames lists the columns accepted by Result.Series.
var SeriesNames = []string{"kinetic_energy", "velocity_norm", "max_strain", "lowest_y", "centroid_y"}

type SimError struct {
	Frame   int
	Time    float64
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %s", e.Frame, e.Time, e.Message)
}
