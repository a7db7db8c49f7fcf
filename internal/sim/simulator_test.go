package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
)

func newTestMesh(t *testing.T) *cloth.Mesh {
	t.Helper()
	cfg := cloth.DefaultMeshConfig()
	cfg.Width, cfg.Height, cfg.Density = 1, 1, 4
	cfg.Origin = mgl64.Vec3{0, 5, 0}
	m, err := cloth.NewMesh(cfg)
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	return m
}

func TestNewInvalidConfig(t *testing.T) {
	mesh := newTestMesh(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, SubSteps: 1}},
		{"negative dt", Config{Dt: -0.1, SubSteps: 1}},
		{"zero sub steps", Config{Dt: 0.01, SubSteps: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(mesh, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil mesh")
	}
}

func TestGravityImpulseIndependentOfSubSteps(t *testing.T) {
	for _, n := range []int{1, 5, 20} {
		mesh := newTestMesh(t)
		s, err := New(mesh, Config{Dt: 0.01, SubSteps: n, Gravity: mgl64.Vec3{0, -9.8, 0}})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if err := s.Frame(); err != nil {
			t.Fatalf("frame: %v", err)
		}

		for _, p := range mesh.Points() {
			if math.Abs(p.Velocity.Y()+0.098) > 1e-9 {
				t.Fatalf("sub steps %d: expected vy -0.098, got %g", n, p.Velocity.Y())
			}
		}
		if got := s.Time(); math.Abs(got-0.01*float64(n)) > 1e-12 {
			t.Errorf("sub steps %d: expected time %g, got %g", n, 0.01*float64(n), got)
		}
	}
}

func TestApplyForceConsumedOnce(t *testing.T) {
	mesh := newTestMesh(t)
	s, err := New(mesh, Config{Dt: 0.01, SubSteps: 4})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.ApplyForce(mgl64.Vec3{10, 0, 0})
	if s.PendingForce() != (mgl64.Vec3{10, 0, 0}) {
		t.Errorf("unexpected pending force %v", s.PendingForce())
	}

	if err := s.Frame(); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if s.PendingForce() != (mgl64.Vec3{}) {
		t.Error("pending force should be cleared after a frame")
	}

	vx := mesh.Points()[0].Velocity.X()
	if math.Abs(vx-0.1) > 1e-9 {
		t.Errorf("expected vx 0.1 after one frame, got %g", vx)
	}

	if err := s.Frame(); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if got := mesh.Points()[0].Velocity.X(); math.Abs(got-vx) > 1e-9 {
		t.Errorf("force leaked into second frame: %g vs %g", got, vx)
	}
}

type countMetric struct {
	count int
}

func (c *countMetric) Name() string                     { return "count" }
func (c *countMetric) Observe(m *cloth.Mesh, t float64) { c.count++ }
func (c *countMetric) Value() float64                   { return float64(c.count) }
func (c *countMetric) Reset()                           { c.count = 0 }

func TestRunCollectsSamplesAndMetrics(t *testing.T) {
	mesh := newTestMesh(t)
	s, err := New(mesh, DefaultConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	metric := &countMetric{}
	s.AddMetric(metric)

	frames := 0
	s.AddObserver(ObserverFunc(func(frame int, _ float64, _ *cloth.Mesh) {
		frames = frame
	}))

	result, err := s.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Samples))
	}
	if result.FramesTaken != 10 || frames != 10 {
		t.Errorf("expected 10 frames, got %d / %d", result.FramesTaken, frames)
	}
	if result.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations, got %v", result.Metrics["count"])
	}
	if math.Abs(result.Time-10*0.2) > 1e-9 {
		t.Errorf("expected time 2.0, got %f", result.Time)
	}
	if result.Samples[10].CentroidY >= result.Samples[0].CentroidY {
		t.Error("free cloth should fall")
	}
}

func TestRunStopsOnInvalidState(t *testing.T) {
	mesh := newTestMesh(t)
	mesh.Point(1, 1).Position[0] = math.NaN()

	s, err := New(mesh, DefaultConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := s.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("run should report instability in result, got %v", err)
	}
	if result.FramesTaken != 0 {
		t.Errorf("expected no completed frames, got %d", result.FramesTaken)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %d", len(result.Errors))
	}
	var simErr SimError
	if !errors.As(result.Errors[0], &simErr) {
		t.Fatalf("expected SimError, got %T", result.Errors[0])
	}
	if simErr.Frame != 1 {
		t.Errorf("expected failure at frame 1, got %d", simErr.Frame)
	}
}

func TestRunCancelled(t *testing.T) {
	s, err := New(newTestMesh(t), DefaultConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, 100)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.FramesTaken != 0 {
		t.Error("expected empty partial result")
	}
}

func TestRunNegativeFrames(t *testing.T) {
	s, _ := New(newTestMesh(t), DefaultConfig())
	if _, err := s.Run(context.Background(), -1); err == nil {
		t.Error("expected error for negative frames")
	}
}

func TestRunWithCallback(t *testing.T) {
	s, _ := New(newTestMesh(t), DefaultConfig())

	calls := 0
	err := s.RunWithCallback(context.Background(), func(frame int, _ float64, _ *cloth.Mesh) bool {
		calls++
		return frame < 3
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.FrameCount() != 3 || calls != 4 {
		t.Errorf("expected 3 frames and 4 calls, got %d and %d", s.FrameCount(), calls)
	}
}

func TestBatchDeterministic(t *testing.T) {
	var sims []*Simulator
	for i := 0; i < 3; i++ {
		s, err := New(newTestMesh(t), DefaultConfig())
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		sims = append(sims, s)
	}

	results, err := NewBatch(sims...).Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := results[0].Samples[5].CentroidY
	for i, r := range results {
		if r.Samples[5].CentroidY != want {
			t.Errorf("run %d diverged: %g vs %g", i, r.Samples[5].CentroidY, want)
		}
	}
}

func TestBatchSingleWorker(t *testing.T) {
	var sims []*Simulator
	for i := 0; i < 4; i++ {
		s, err := New(newTestMesh(t), DefaultConfig())
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		sims = append(sims, s)
	}

	b := NewBatch(sims...)
	b.Workers = 1
	results, err := b.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	for i, r := range results {
		if r == nil || r.FramesTaken != 2 {
			t.Errorf("run %d incomplete: %+v", i, r)
		}
	}
}

func TestBatchReportsError(t *testing.T) {
	good, err := New(newTestMesh(t), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	bad, err := New(newTestMesh(t), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	results, err := NewBatch(good, bad).Run(context.Background(), -1)
	if err == nil {
		t.Error("expected error for negative frames")
	}
	if len(results) != 2 {
		t.Errorf("expected 2 result slots, got %d", len(results))
	}
}

func TestSceneDefault(t *testing.T) {
	sc, err := NewScene(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	mesh := sc.Mesh()
	if len(mesh.Points()) != 24*24 {
		t.Errorf("expected 576 points, got %d", len(mesh.Points()))
	}
	if len(mesh.Pinned()) != 2 {
		t.Errorf("expected 2 pins, got %d", len(mesh.Pinned()))
	}
	if sc.Sim.PendingForce() != (mgl64.Vec3{10, 10, 10}) {
		t.Errorf("expected initial force queued, got %v", sc.Sim.PendingForce())
	}

	corner := mesh.Point(0, 0).Position
	result, err := sc.Sim.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if mesh.Point(0, 0).Position != corner {
		t.Error("pinned corner moved")
	}
	if _, ok := result.Metrics["kinetic_energy"]; !ok {
		t.Error("expected default metrics in result")
	}
}

func TestSceneResetAndRelease(t *testing.T) {
	sc, err := NewScene(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("scene: %v", err)
	}

	observed := 0
	sc.AddObserver(ObserverFunc(func(int, float64, *cloth.Mesh) { observed++ }))

	sc.ReleasePin(0)
	sc.ReleasePin(9)
	if len(sc.Mesh().Pinned()) != 1 {
		t.Errorf("expected 1 pin after release, got %d", len(sc.Mesh().Pinned()))
	}

	sc.Pull(mgl64.Vec3{0, 0, 1})
	want := mgl64.Vec3{10, 10, 10 + config.DefaultPullForce}
	if sc.Sim.PendingForce() != want {
		t.Errorf("expected pending %v, got %v", want, sc.Sim.PendingForce())
	}

	if err := sc.Sim.Frame(); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := sc.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(sc.Mesh().Pinned()) != 2 {
		t.Error("reset should restore pins")
	}
	if sc.Sim.FrameCount() != 0 {
		t.Error("reset should restart the frame counter")
	}
	if err := sc.Sim.Frame(); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if observed != 2 {
		t.Errorf("observer should survive reset, saw %d frames", observed)
	}
}

func TestScenePinsFollowGrid(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*config.Config)
	}{
		{"density 2", func(c *config.Config) { _ = c.SetParam("density", 2) }},
		{"density 8", func(c *config.Config) { _ = c.SetParam("density", 8) }},
		{"width 3", func(c *config.Config) { c.Cloth.Width = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetPreset("hang")
			tt.setup(cfg)
			sc, err := NewScene(cfg, nil)
			if err != nil {
				t.Fatalf("scene: %v", err)
			}
			mesh := sc.Mesh()
			got := mesh.Pinned()
			want := [][2]int{{0, 0}, {mesh.Rows() - 1, 0}}
			if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
				t.Errorf("rows=%d: expected pins %v, got %v", mesh.Rows(), want, got)
			}

			sc.ReleasePin(1)
			if mesh.IsPinned(mesh.Rows()-1, 0) {
				t.Error("release should free the far corner")
			}
		})
	}
}

func TestScenePinOffsetsPrestress(t *testing.T) {
	sc, err := NewScene(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	mesh := sc.Mesh()
	pts := mesh.Points()

	for _, corner := range [][2]int{{0, 0}, {mesh.Rows() - 1, 0}} {
		idx, ok := mesh.Index(corner[0], corner[1])
		if !ok {
			t.Fatalf("corner %v out of range", corner)
		}
		stretched := false
		springs := mesh.Springs()
		for k := range springs {
			s := &springs[k]
			if s.Kind != cloth.Structural || (s.A != idx && s.B != idx) {
				continue
			}
			if math.Abs(s.Strain(pts)) > 0.1 {
				stretched = true
			}
		}
		if !stretched {
			t.Errorf("corner %v: expected pre-stressed structural springs", corner)
		}
	}
}

func TestSceneInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cloth.Density = 0
	if _, err := NewScene(cfg, nil); err == nil {
		t.Error("expected error for invalid config")
	}
}
