// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/samuelfneumann/goarm/agent"
	"github.com/samuelfneumann/goarm/environment/envconfig"
	"github.com/samuelfneumann/goarm/experiment/trackers"
	ts "github.com/samuelfneumann/goarm/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes util the maximum timestep limit is reached, or some
// other ending condition is reached. The RunEpisode() function will
// run a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments will
// send each TimeStep to Trackers using the Tracker's Track() method.
// The Tracker then determines which data from the TimeStep it caches
// and saves. New Trackers can be registered with an Experiment through
// the constructor or through an Experiment's Register() function.
type Experiment interface {
	Run() error

	// RunEpisode runs a single episode, returning whether or not the
	// experiment's timestep limit has been reached
	RunEpisode() (bool, error)

	// Tracks current timestep by sending it to Trackers
	track(ts.TimeStep)

	// Save all tracked data to disk
	Save()

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	MaxSteps    uint
	EnvConfig   envconfig.Config
	AgentConfig agent.Config
}

// CreateExp creates the experiment that the Config describes, with the
// argument Trackers registered
func (c Config) CreateExp(seed uint64,
	t []trackers.Tracker) (Experiment, error) {
	env, _, err := c.EnvConfig.CreateEnv(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: %v",
			err)
	}

	agent, err := c.AgentConfig.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %v", err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, agent, c.MaxSteps, t...), nil
	}

	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}
