package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
)

const (
	DefaultDt        = 0.01
	DefaultSubSteps  = 20
	DefaultGravity   = -9.8
	DefaultFrames    = 600
	DefaultGroundY   = 1.5
	DefaultGroundFr  = 0.9
	DefaultSphereR   = 1.0
	DefaultSphereFr  = 0.8
	DefaultPullForce = 12.0
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Cloth      ClothConfig      `yaml:"cloth"`
	Springs    SpringConfig     `yaml:"springs"`
	Simulation SimulationConfig `yaml:"simulation"`
	Pins       []PinConfig      `yaml:"pins"`
	Ground     GroundConfig     `yaml:"ground"`
	Sphere     SphereConfig     `yaml:"sphere"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ClothConfig struct {
	Width   float64    `yaml:"width"`
	Height  float64    `yaml:"height"`
	Density float64    `yaml:"density"`
	Origin  [3]float64 `yaml:"origin"`
	Layout  string     `yaml:"layout"`
	Mass    float64    `yaml:"mass"`
}

type SpringConfig struct {
	Structural      float64 `yaml:"structural"`
	Shear           float64 `yaml:"shear"`
	Bending         float64 `yaml:"bending"`
	Damping         float64 `yaml:"damping"`
	DiagonalBending bool    `yaml:"diagonal_bending"`
}

type SimulationConfig struct {
	Dt               float64    `yaml:"dt"`
	SubSteps         int        `yaml:"sub_steps"`
	Gravity          float64    `yaml:"gravity"`
	Frames           int        `yaml:"frames"`
	Integrator       string     `yaml:"integrator"`
	StrainIterations int        `yaml:"strain_iterations"`
	MaxStretch       float64    `yaml:"max_stretch"`
	InitialForce     [3]float64 `yaml:"initial_force"`
	PullForce        float64    `yaml:"pull_force"`
}

// PinConfig fixes grid point (I, J). Negative coordinates count back from
// the far edge, so -1 is the last row or column whatever the density.
type PinConfig struct {
	I      int        `yaml:"i"`
	J      int        `yaml:"j"`
	Offset [3]float64 `yaml:"offset"`
}

type GroundConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Position [3]float64 `yaml:"position"`
	Width    float64    `yaml:"width"`
	Depth    float64    `yaml:"depth"`
	Friction float64    `yaml:"friction"`
}

type SphereConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Center   [3]float64 `yaml:"center"`
	Radius   float64    `yaml:"radius"`
	Friction float64    `yaml:"friction"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig reproduces the hanging-curtain scene: a 6x6 cloth pinned at
// both top corners above a ball resting near the ground. The pins pull the
// corners one unit inward, which pre-stresses the springs around them.
func DefaultConfig() *Config {
	mc := cloth.DefaultMeshConfig()
	return &Config{
		Cloth: ClothConfig{
			Width:   mc.Width,
			Height:  mc.Height,
			Density: mc.Density,
			Origin:  [3]float64(mc.Origin),
			Layout:  mc.Layout.String(),
			Mass:    mc.Mass,
		},
		Springs: SpringConfig{
			Structural:      mc.Structural,
			Shear:           mc.Shear,
			Bending:         mc.Bending,
			Damping:         mc.Damping,
			DiagonalBending: mc.DiagonalBending,
		},
		Simulation: SimulationConfig{
			Dt:               DefaultDt,
			SubSteps:         DefaultSubSteps,
			Gravity:          DefaultGravity,
			Frames:           DefaultFrames,
			Integrator:       "euler",
			StrainIterations: cloth.DefaultStrainIterations,
			MaxStretch:       cloth.DefaultMaxStretch,
			InitialForce:     [3]float64{10, 10, 10},
			PullForce:        DefaultPullForce,
		},
		Pins: []PinConfig{
			{I: 0, J: 0, Offset: [3]float64{1, 0, 0}},
			{I: -1, J: 0, Offset: [3]float64{-1, 0, 0}},
		},
		Ground: GroundConfig{
			Enabled:  true,
			Position: [3]float64{-10, DefaultGroundY, -10},
			Width:    20,
			Depth:    20,
			Friction: DefaultGroundFr,
		},
		Sphere: SphereConfig{
			Enabled:  true,
			Center:   [3]float64{0, 2, -3},
			Radius:   DefaultSphereR,
			Friction: DefaultSphereFr,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, so omitted keys keep default values.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Cloth.Width <= 0 || c.Cloth.Height <= 0:
		return fmt.Errorf("%w: cloth width and height must be positive", ErrInvalidConfig)
	case c.Cloth.Density <= 0:
		return fmt.Errorf("%w: cloth density must be positive", ErrInvalidConfig)
	case c.Cloth.Mass <= 0:
		return fmt.Errorf("%w: cloth mass must be positive", ErrInvalidConfig)
	case c.Simulation.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive", ErrInvalidConfig)
	case c.Simulation.SubSteps < 1:
		return fmt.Errorf("%w: sub_steps must be at least 1", ErrInvalidConfig)
	case c.Simulation.Frames < 0:
		return fmt.Errorf("%w: frames must not be negative", ErrInvalidConfig)
	}
	if _, err := cloth.ParseLayout(c.Cloth.Layout); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := cloth.IntegratorByName(c.Simulation.Integrator, c.Simulation.StrainIterations, c.Simulation.MaxStretch); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Ground.Enabled {
		if _, err := c.GroundCollider(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if c.Sphere.Enabled {
		if _, err := c.SphereCollider(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	mc, err := c.MeshConfig()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := cloth.NewMesh(mc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// MeshConfig converts the cloth, springs and pins sections.
func (c *Config) MeshConfig() (cloth.MeshConfig, error) {
	layout, err := cloth.ParseLayout(c.Cloth.Layout)
	if err != nil {
		return cloth.MeshConfig{}, err
	}
	integ, err := cloth.IntegratorByName(c.Simulation.Integrator, c.Simulation.StrainIterations, c.Simulation.MaxStretch)
	if err != nil {
		return cloth.MeshConfig{}, err
	}
	pins := make([]cloth.Pin, len(c.Pins))
	for k, p := range c.Pins {
		i, j := c.ResolvePin(p)
		pins[k] = cloth.Pin{I: i, J: j, Offset: mgl64.Vec3(p.Offset)}
	}
	return cloth.MeshConfig{
		Width:           c.Cloth.Width,
		Height:          c.Cloth.Height,
		Density:         c.Cloth.Density,
		Origin:          mgl64.Vec3(c.Cloth.Origin),
		Layout:          layout,
		Mass:            c.Cloth.Mass,
		Structural:      c.Springs.Structural,
		Shear:           c.Springs.Shear,
		Bending:         c.Springs.Bending,
		Damping:         c.Springs.Damping,
		DiagonalBending: c.Springs.DiagonalBending,
		Pins:            pins,
		Integrator:      integ,
	}, nil
}

// GridSize is the rows x cols the cloth section builds.
func (c *Config) GridSize() (rows, cols int) {
	return cloth.GridSize(c.Cloth.Width, c.Cloth.Height, c.Cloth.Density)
}

// ResolvePin maps p to absolute grid coordinates for the current grid size.
func (c *Config) ResolvePin(p PinConfig) (i, j int) {
	rows, cols := c.GridSize()
	i, j = p.I, p.J
	if i < 0 {
		i += rows
	}
	if j < 0 {
		j += cols
	}
	return i, j
}

func (c *Config) GroundCollider() (*cloth.Ground, error) {
	g := c.Ground
	return cloth.NewGround(mgl64.Vec3(g.Position), g.Width, g.Depth, g.Friction)
}

func (c *Config) SphereCollider() (*cloth.Sphere, error) {
	s := c.Sphere
	return cloth.NewSphere(mgl64.Vec3(s.Center), s.Radius, s.Friction)
}

// Colliders returns the enabled colliders, ground first.
func (c *Config) Colliders() ([]cloth.Collider, error) {
	var out []cloth.Collider
	if c.Ground.Enabled {
		g, err := c.GroundCollider()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if c.Sphere.Enabled {
		s, err := c.SphereCollider()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Config) GravityVec() mgl64.Vec3 {
	return mgl64.Vec3{0, c.Simulation.Gravity, 0}
}

func (c *Config) InitialForce() mgl64.Vec3 {
	return mgl64.Vec3(c.Simulation.InitialForce)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Pins = append([]PinConfig(nil), c.Pins...)
	return &out
}
