package config

import "sort"

func preset(scene string, apply func(c *Config)) *Config {
	c := DefaultConfig()
	c.Scene = scene
	apply(c)
	return c
}

// Presets maps a scene name to named configurations for it.
var Presets = map[string]map[string]*Config{
	"pair": {
		"drift": preset("pair", func(c *Config) { c.Duration = 5 }),
		"spring": preset("pair", func(c *Config) {
			c.BeamModel = "spring"
			c.Integrator = "verlet"
			c.Spring = SpringConfig{Stiffness: 200, Damping: 5}
		}),
	},
	"triangle": {
		"static": preset("triangle", func(c *Config) { c.MoveNodes = false }),
		"sag": preset("triangle", func(c *Config) {
			c.BeamModel = "spring"
			c.Spring = SpringConfig{Stiffness: 2000, Damping: 200}
		}),
	},
	"cantilever": {
		"static": preset("cantilever", func(c *Config) { c.MoveNodes = false }),
		"timber": preset("cantilever", func(c *Config) {
			c.Material = "Wood"
			c.BeamModel = "spring"
			c.Spring = SpringConfig{Stiffness: 800, Damping: 80}
		}),
	},
	"bridge": {
		"static": preset("bridge", func(c *Config) { c.MoveNodes = false }),
		"sway": preset("bridge", func(c *Config) {
			c.BeamModel = "spring"
			c.Integrator = "rk45"
			c.Duration = 20
			c.Spring = SpringConfig{Stiffness: 1500, Damping: 30}
		}),
	},
	"tower": {
		"static": preset("tower", func(c *Config) { c.MoveNodes = false }),
		"wind": preset("tower", func(c *Config) {
			c.BeamModel = "spring"
			c.Material = "Aluminum"
			c.Force = ForceConfig{X: 5}
			c.Spring = SpringConfig{Stiffness: 1000, Damping: 50}
		}),
	},
}

// GetPreset returns a copy of the preset, or nil.
func GetPreset(scene, name string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
