package random

import (
	"github.com/samuelfneumann/goarm/agent"
	"github.com/samuelfneumann/goarm/environment"
)

// Config implements a configuration for creating a Continuous agent.
// The agent has no hyperparameters, so the Config carries no fields;
// it exists so that experiment configurations can describe random
// agents the same way as any other agent.
type Config struct{}

// CreateAgent creates the agent that the config describes
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return NewContinuous(env, seed)
}

// ValidAgent returns whether the argument agent is valid for the
// Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*Continuous)
	return ok
}

// Validate returns an error describing whether or not the
// configuration is valid or not.
func (c Config) Validate() error {
	return nil
}
