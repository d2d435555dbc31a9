package experiment

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/goarm/agent"
	env "github.com/samuelfneumann/goarm/environment"
	"github.com/samuelfneumann/goarm/experiment/trackers"
	ts "github.com/samuelfneumann/goarm/timestep"
	"github.com/samuelfneumann/goarm/utils/progressbar"
)

// progressWidth is the character width of the progress bar that Run
// displays in the terminal
const progressWidth int = 50

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps     uint
	currentSteps uint
	trackers     []trackers.Tracker
	progress     *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter is a
// slice of trackers.Tracker which determine what data is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t ...trackers.Tracker) *Online {
	progress := progressbar.New(progressWidth, int(steps), time.Second, false)

	return &Online{e, a, steps, 0, t, progress}
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment, returning
// whether or not the experiment's timestep limit has been reached
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return true, fmt.Errorf("runEpisode: could not reset "+
			"environment: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return true, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	// Run the next timestep
	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++
		o.progress.Increment()

		// Select action, step in environment
		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: could not step "+
				"environment: %v", err)
		}

		// Cache the environment step in each Tracker
		o.track(step)

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.Agent.Step(); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
	}

	if step.Last() {
		o.Agent.EndEpisode()
	}

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps, displaying its
// progress in the terminal
func (o *Online) Run() error {
	o.progress.Display()
	defer o.progress.Close()

	ended := false
	var err error
	for !ended {
		ended, err = o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, tracker := range o.trackers {
		tracker.Save()
	}
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}
