// Package envconfig provides configuration structs for constructing
// reach-cube environments with default physical and task parameters.
// Environment configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/goarm/environment"
	"github.com/samuelfneumann/goarm/environment/mujoco/reachcube"
	ts "github.com/samuelfneumann/goarm/timestep"
)

// ActionMode stores the action modes that environments can be
// configured with
type ActionMode string

// Action modes available for configuration
const (
	// Joint-mode actions are target angles for the arm joints
	Joint ActionMode = "Joint"

	// EndEffector-mode actions are target Cartesian positions for the
	// gripper
	EndEffector ActionMode = "EndEffector"
)

// DefaultFrameSkip is the number of physics steps each environmental
// step simulates unless configured otherwise
const DefaultFrameSkip int = 4

// Config implements a specific configuration of the reach-cube
// environment. The zero value is not valid; construct Configs with
// NewConfig or populate every field before use.
type Config struct {
	ActionMode    ActionMode
	ObjXYRange    float64 // Half-width of cube start region (m)
	Threshold     float64 // Solve distance (m)
	FrameSkip     int
	EpisodeCutoff int
	Discount      float64
}

// NewConfig returns a new environment Config with default physical and
// task parameters
func NewConfig(mode ActionMode, episodeCutoff int,
	discount float64) (Config, error) {
	c := Config{
		ActionMode:    mode,
		ObjXYRange:    reachcube.DefaultObjXYRange,
		Threshold:     reachcube.DefaultThreshold,
		FrameSkip:     DefaultFrameSkip,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("newConfig: %v", err)
	}
	return c, nil
}

// Validate returns an error describing why the Config cannot be used
// to construct an environment, or nil if it can
func (c Config) Validate() error {
	if c.ActionMode != Joint && c.ActionMode != EndEffector {
		return fmt.Errorf("validate: no such action mode %v", c.ActionMode)
	}
	if c.ObjXYRange < 0 {
		return fmt.Errorf("validate: cube start range should be "+
			"non-negative, got %v", c.ObjXYRange)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("validate: solve threshold should be positive, "+
			"got %v", c.Threshold)
	}
	if c.FrameSkip <= 0 {
		return fmt.Errorf("validate: frame skip should be positive, got %v",
			c.FrameSkip)
	}
	if c.EpisodeCutoff <= 0 {
		return fmt.Errorf("validate: episode cutoff should be positive, "+
			"got %v", c.EpisodeCutoff)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount should be in [0, 1], got %v",
			c.Discount)
	}
	return nil
}

// CreateEnv returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) CreateEnv(seed uint64) (env.Environment, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createEnv: %v", err)
	}

	bound := r1.Interval{Min: -c.ObjXYRange, Max: c.ObjXYRange}
	starter := env.NewUniformStarter([]r1.Interval{bound, bound}, seed)

	task, err := reachcube.NewReach(starter, c.Threshold, c.EpisodeCutoff)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createEnv: %v", err)
	}

	switch c.ActionMode {
	case Joint:
		return reachcube.NewJoint(task, c.FrameSkip, seed, c.Discount)

	case EndEffector:
		return reachcube.NewEndEffector(task, c.FrameSkip, seed, c.Discount)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("createEnv: cannot create "+
		"environment with action mode %v, no such mode", c.ActionMode)
}
