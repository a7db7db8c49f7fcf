package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
)

// Scene assembles a mesh, its colliders and a simulator from a config and
// can rebuild them on demand.
type Scene struct {
	Config *config.Config
	Sim    *Simulator

	log       *zap.Logger
	observers []Observer
}

func NewScene(cfg *config.Config, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sc := &Scene{Config: cfg, log: log}
	if err := sc.build(); err != nil {
		return nil, err
	}
	return sc, nil
}

// SimConfig maps the simulation section onto the driver config.
func SimConfig(cfg *config.Config) Config {
	return Config{
		Dt:            cfg.Simulation.Dt,
		SubSteps:      cfg.Simulation.SubSteps,
		Gravity:       cfg.GravityVec(),
		ValidateState: true,
	}
}

func (sc *Scene) build() error {
	if err := sc.Config.Validate(); err != nil {
		return err
	}
	mc, err := sc.Config.MeshConfig()
	if err != nil {
		return err
	}
	mesh, err := cloth.NewMesh(mc)
	if err != nil {
		return err
	}
	colliders, err := sc.Config.Colliders()
	if err != nil {
		return err
	}
	simCfg := SimConfig(sc.Config)
	s, err := New(mesh, simCfg, colliders...)
	if err != nil {
		return err
	}
	s.SetLogger(sc.log)

	for _, m := range metrics.Default(s.TickGravity()) {
		s.AddMetric(m)
	}
	for _, o := range sc.observers {
		s.AddObserver(o)
	}

	mesh.ComputeNormal()
	if f := sc.Config.InitialForce(); f != (mgl64.Vec3{}) {
		s.ApplyForce(f)
	}

	sc.Sim = s
	sc.log.Debug("scene built",
		zap.Int("rows", mesh.Rows()),
		zap.Int("cols", mesh.Cols()),
		zap.Int("springs", len(mesh.Springs())),
		zap.Int("colliders", len(colliders)),
	)
	return nil
}

func (sc *Scene) Mesh() *cloth.Mesh { return sc.Sim.Mesh() }

// AddObserver registers o on the current simulator and on every rebuilt one.
func (sc *Scene) AddObserver(o Observer) {
	sc.observers = append(sc.observers, o)
	sc.Sim.AddObserver(o)
}

// Reset rebuilds the scene from its config.
func (sc *Scene) Reset() error {
	return sc.build()
}

// Pull queues the configured pull force along dir.
func (sc *Scene) Pull(dir mgl64.Vec3) {
	sc.Sim.ApplyForce(dir.Mul(sc.Config.Simulation.PullForce))
}

// ReleasePin unpins the k-th configured pin. Out of range is a no-op.
func (sc *Scene) ReleasePin(k int) {
	if k < 0 || k >= len(sc.Config.Pins) {
		return
	}
	i, j := sc.Config.ResolvePin(sc.Config.Pins[k])
	sc.Mesh().Unpin(i, j)
}
