package config

import "sort"

// Presets are named scenes. Each entry is a function so callers always get
// a fresh, mutable copy.
var Presets = map[string]func() *Config{
	"hang": func() *Config {
		return DefaultConfig()
	},
	"drape": func() *Config {
		cfg := DefaultConfig()
		cfg.Cloth.Layout = "horizontal"
		cfg.Cloth.Origin = [3]float64{-3, 4, -6}
		cfg.Pins = nil
		cfg.Simulation.InitialForce = [3]float64{}
		return cfg
	},
	"stiff": func() *Config {
		cfg := DefaultConfig()
		cfg.Springs.Structural = 1500
		cfg.Springs.Shear = 100
		cfg.Springs.Bending = 600
		cfg.Springs.Damping = 8
		cfg.Simulation.SubSteps = 40
		return cfg
	},
	"silk": func() *Config {
		cfg := DefaultConfig()
		cfg.Cloth.Mass = 0.5
		cfg.Springs.Structural = 300
		cfg.Springs.Bending = 20
		cfg.Springs.DiagonalBending = false
		cfg.Simulation.Integrator = "strain-limited"
		return cfg
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
