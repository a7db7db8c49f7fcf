package config

import (
	"errors"
	"fmt"
)

var ErrUnknownParam = errors.New("unknown parameter")

// Param is a scalar setting addressable by name, used by sweeps, searches
// and the interactive menu.
type Param struct {
	Name string
	Get  func(*Config) float64
	Set  func(*Config, float64)
}

var Params = []Param{
	{"structural", func(c *Config) float64 { return c.Springs.Structural }, func(c *Config, v float64) { c.Springs.Structural = v }},
	{"shear", func(c *Config) float64 { return c.Springs.Shear }, func(c *Config, v float64) { c.Springs.Shear = v }},
	{"bending", func(c *Config) float64 { return c.Springs.Bending }, func(c *Config, v float64) { c.Springs.Bending = v }},
	{"damping", func(c *Config) float64 { return c.Springs.Damping }, func(c *Config, v float64) { c.Springs.Damping = v }},
	{"mass", func(c *Config) float64 { return c.Cloth.Mass }, func(c *Config, v float64) { c.Cloth.Mass = v }},
	{"density", func(c *Config) float64 { return c.Cloth.Density }, func(c *Config, v float64) { c.Cloth.Density = v }},
	{"dt", func(c *Config) float64 { return c.Simulation.Dt }, func(c *Config, v float64) { c.Simulation.Dt = v }},
	{"gravity", func(c *Config) float64 { return c.Simulation.Gravity }, func(c *Config, v float64) { c.Simulation.Gravity = v }},
	{"max_stretch", func(c *Config) float64 { return c.Simulation.MaxStretch }, func(c *Config, v float64) { c.Simulation.MaxStretch = v }},
	{"ground_friction", func(c *Config) float64 { return c.Ground.Friction }, func(c *Config, v float64) { c.Ground.Friction = v }},
	{"sphere_friction", func(c *Config) float64 { return c.Sphere.Friction }, func(c *Config, v float64) { c.Sphere.Friction = v }},
	{"sphere_radius", func(c *Config) float64 { return c.Sphere.Radius }, func(c *Config, v float64) { c.Sphere.Radius = v }},
}

func LookupParam(name string) (Param, error) {
	for _, p := range Params {
		if p.Name == name {
			return p, nil
		}
	}
	return Param{}, fmt.Errorf("%w: %s", ErrUnknownParam, name)
}

func ParamNames() []string {
	names := make([]string, len(Params))
	for i, p := range Params {
		names[i] = p.Name
	}
	return names
}

func (c *Config) GetParam(name string) (float64, error) {
	p, err := LookupParam(name)
	if err != nil {
		return 0, err
	}
	return p.Get(c), nil
}

func (c *Config) SetParam(name string, v float64) error {
	p, err := LookupParam(name)
	if err != nil {
		return err
	}
	p.Set(c, v)
	return nil
}
