package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/trusslab/internal/integrators"
	"github.com/san-kum/trusslab/internal/physics"
	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrameDt    = 1.0 / 60
	DefaultDuration   = 10.0
	DefaultTolerance  = 0.01
	DefaultBeamModel  = "snapshot"
	DefaultIntegrator = "rk4"
)

// Config is the explicit sandbox configuration. It replaces any process
// wide state for world size, unit and time step.
type Config struct {
	WorldSize            float64      `yaml:"world_size"`
	Unit                 string       `yaml:"unit"`
	SimulationTimeStep   float64      `yaml:"simulation_time_step"`
	FrameDt              float64      `yaml:"frame_dt"`
	Duration             float64      `yaml:"duration"`
	BeamModel            string       `yaml:"beam_model"`
	Integrator           string       `yaml:"integrator"`
	MoveNodes            bool         `yaml:"move_nodes"`
	Scene                string       `yaml:"scene"`
	Material             string       `yaml:"material"`
	EquilibriumTolerance float64      `yaml:"equilibrium_tolerance"`
	Node                 NodeConfig   `yaml:"node"`
	Spring               SpringConfig `yaml:"spring"`
	Force                ForceConfig  `yaml:"force"`
}

type NodeConfig struct {
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
}

type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
}

// ForceConfig is the force applied to selected nodes from the sandbox.
type ForceConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldSize:            structure.DefaultWorldSize,
		Unit:                 structure.DefaultUnit,
		SimulationTimeStep:   structure.DefaultTimeStep,
		FrameDt:              DefaultFrameDt,
		Duration:             DefaultDuration,
		BeamModel:            DefaultBeamModel,
		Integrator:           DefaultIntegrator,
		MoveNodes:            true,
		Material:             structure.DefaultMaterial().Name,
		EquilibriumTolerance: DefaultTolerance,
		Node: NodeConfig{
			Mass:   structure.DefaultMass,
			Radius: structure.DefaultRadius,
		},
		Spring: SpringConfig{
			Stiffness: physics.DefaultStiffness,
			Damping:   physics.DefaultDamping,
		},
	}
}

// Load reads a YAML file over the defaults, so missing keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
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

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", name, v))
		}
	}
	positive("world_size", c.WorldSize)
	positive("simulation_time_step", c.SimulationTimeStep)
	positive("frame_dt", c.FrameDt)
	positive("duration", c.Duration)
	positive("equilibrium_tolerance", c.EquilibriumTolerance)
	positive("node.mass", c.Node.Mass)
	positive("node.radius", c.Node.Radius)

	if c.Unit == "" {
		errs = append(errs, errors.New("unit must not be empty"))
	}
	if c.Spring.Stiffness < 0 || c.Spring.Damping < 0 {
		errs = append(errs, fmt.Errorf("spring parameters must not be negative, got k=%g c=%g", c.Spring.Stiffness, c.Spring.Damping))
	}
	if _, err := physics.ParseModel(c.BeamModel); err != nil {
		errs = append(errs, err)
	}
	if _, err := integrators.ByName(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	if _, err := structure.LookupMaterial(c.Material); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) World() structure.World {
	return structure.World{Size: c.WorldSize, Unit: c.Unit, TimeStep: c.SimulationTimeStep}
}

func (c *Config) ForceVector() r3.Vec {
	return r3.Vec{X: c.Force.X, Y: c.Force.Y, Z: c.Force.Z}
}

func (c *Config) NodeDefaults() structure.NodeDefaults {
	return structure.NodeDefaults{Mass: c.Node.Mass, Radius: c.Node.Radius, Material: c.Material}
}

// Physics resolves the beam model and integrator into stepper settings.
func (c *Config) Physics() (physics.Settings, physics.Integrator, error) {
	model, err := physics.ParseModel(c.BeamModel)
	if err != nil {
		return physics.Settings{}, nil, err
	}
	integ, err := integrators.ByName(c.Integrator)
	if err != nil {
		return physics.Settings{}, nil, err
	}
	settings := physics.Settings{
		World:     c.World(),
		Model:     model,
		Stiffness: c.Spring.Stiffness,
		Damping:   c.Spring.Damping,
		MoveNodes: c.MoveNodes,
	}
	return settings, integ, nil
}

// NewStepper is Physics followed by physics.NewStepper.
func (c *Config) NewStepper() (*physics.Stepper, error) {
	settings, integ, err := c.Physics()
	if err != nil {
		return nil, err
	}
	return physics.NewStepper(settings, integ)
}
