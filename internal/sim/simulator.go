package sim

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Simulator drives a mesh one displayed frame at a time. A frame is
// SubSteps ticks of Dt with gravity scaled by 1/SubSteps, followed by the
// normal pass, so the gravity impulse per frame does not depend on the
// sub-step count.
type Simulator struct {
	mesh      *cloth.Mesh
	colliders []cloth.Collider
	cfg       Config
	log       *zap.Logger

	metrics   []Metric
	observers []Observer

	pending mgl64.Vec3
	frame   int
	time    float64
}

func New(mesh *cloth.Mesh, cfg Config, colliders ...cloth.Collider) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if mesh == nil {
		return nil, fmt.Errorf("mesh must not be nil")
	}
	return &Simulator{
		mesh:      mesh,
		colliders: colliders,
		cfg:       cfg,
		log:       zap.NewNop(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.SubSteps < 1 {
		return fmt.Errorf("sub steps must be at least 1, got %d", cfg.SubSteps)
	}
	return nil
}

func (s *Simulator) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Mesh() *cloth.Mesh                { return s.mesh }
func (s *Simulator) Colliders() []cloth.Collider      { return s.colliders }
func (s *Simulator) Config() Config                   { return s.cfg }
func (s *Simulator) FrameCount() int                  { return s.frame }
func (s *Simulator) Time() float64                    { return s.time }
func (s *Simulator) Metrics() []Metric                { return s.metrics }
func (s *Simulator) FrameDuration() float64           { return s.cfg.Dt * float64(s.cfg.SubSteps) }
func (s *Simulator) TickGravity() mgl64.Vec3          { return s.cfg.Gravity.Mul(1 / float64(s.cfg.SubSteps)) }
func (s *Simulator) PendingForce() mgl64.Vec3         { return s.pending }
func (s *Simulator) SetColliders(c ...cloth.Collider) { s.colliders = c }

// ApplyForce queues f for every point. It is added to the accumulators in
// the force pass of the next frame's first sub-step.
func (s *Simulator) ApplyForce(f mgl64.Vec3) {
	s.pending = s.pending.Add(f)
}

// Frame advances one displayed frame and notifies metrics and observers.
func (s *Simulator) Frame() error {
	g := s.TickGravity()
	for k := 0; k < s.cfg.SubSteps; k++ {
		if k == 0 && s.pending != (mgl64.Vec3{}) {
			s.mesh.AddForce(s.pending)
			s.pending = mgl64.Vec3{}
		}
		s.mesh.Tick(s.cfg.Dt, g, s.colliders...)
	}
	s.mesh.ComputeNormal()

	s.frame++
	s.time += s.FrameDuration()

	if s.cfg.ValidateState && !s.mesh.IsFinite() {
		err := SimError{Frame: s.frame, Time: s.time, Message: "invalid state (NaN/Inf)"}
		s.log.Warn("simulation unstable",
			zap.Int("frame", s.frame),
			zap.Float64("time", s.time),
		)
		return err
	}

	for _, m := range s.metrics {
		m.Observe(s.mesh, s.time)
	}
	for _, obs := range s.observers {
		obs.OnFrame(s.frame, s.time, s.mesh)
	}
	return nil
}

// Run advances up to frames frames. It stops early on cancellation or on a
// non-finite state; in both cases the partial result is returned.
func (s *Simulator) Run(ctx context.Context, frames int) (*Result, error) {
	if frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", frames)
	}

	result := &Result{
		Samples: make([]Sample, 0, frames+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Info("run started",
		zap.Int("frames", frames),
		zap.Int("points", len(s.mesh.Points())),
		zap.Int("springs", len(s.mesh.Springs())),
		zap.Int("sub_steps", s.cfg.SubSteps),
		zap.Float64("dt", s.cfg.Dt),
	)

	result.Samples = append(result.Samples, sample(s.frame, s.time, s.mesh))

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		if err := s.Frame(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		result.FramesTaken++
		result.Samples = append(result.Samples, sample(s.frame, s.time, s.mesh))
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.Time = s.time
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.log.Info("run finished",
		zap.Int("frames", result.FramesTaken),
		zap.Float64("time", result.Time),
		zap.Int("errors", len(result.Errors)),
	)
}

// RunWithCallback advances frames until the callback returns false, the
// context is cancelled, or the state stops being finite.
func (s *Simulator) RunWithCallback(ctx context.Context, callback func(frame int, t float64, m *cloth.Mesh) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.frame, s.time, s.mesh) {
			return nil
		}
		if err := s.Frame(); err != nil {
			return err
		}
	}
}
