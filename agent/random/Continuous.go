// Package random implements agents that select actions uniformly at
// random from within an environment's action bounds. Random agents
// never learn and are useful both as baselines and for driving an
// environment without any learning machinery.
package random

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/goarm/agent"
	"github.com/samuelfneumann/goarm/environment"
	ts "github.com/samuelfneumann/goarm/timestep"
)

// Continuous implements an agent with a fixed uniform policy over a
// continuous, bounded action space. Each action dimension is sampled
// independently from within the environment's action bounds. All
// Learner methods are no-ops.
type Continuous struct {
	rand *distmv.Uniform
	dims int
	seed uint64
	eval bool
}

// NewContinuous returns a new Continuous agent acting in env. The
// environment must have a continuous action space with finite bounds.
func NewContinuous(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	spec := env.ActionSpec()
	if spec.Cardinality != environment.Continuous {
		return nil, fmt.Errorf("newContinuous: environment does not have " +
			"continuous actions")
	}

	dims := spec.Shape.Len()
	bounds := make([]r1.Interval, dims)
	for i := range bounds {
		lower := spec.LowerBound.AtVec(i)
		upper := spec.UpperBound.AtVec(i)
		if math.IsInf(lower, 0) || math.IsInf(upper, 0) {
			return nil, fmt.Errorf("newContinuous: action dimension %v is "+
				"unbounded \n\thave([%v, %v]) \n\twant(finite bounds)", i,
				lower, upper)
		}
		bounds[i] = r1.Interval{Min: lower, Max: upper}
	}

	source := rand.NewSource(seed)
	return &Continuous{
		rand: distmv.NewUniform(bounds, source),
		dims: dims,
		seed: seed,
	}, nil
}

// SelectAction returns an action sampled uniformly at random from
// within the environment's action bounds. The timestep argument is
// ignored since the policy does not depend on state.
func (c *Continuous) SelectAction(t ts.TimeStep) *mat.VecDense {
	return mat.NewVecDense(c.dims, c.rand.Rand(nil))
}

// Eval sets the agent to evaluation mode. The agent's policy is the
// same in both modes.
func (c *Continuous) Eval() { c.eval = true }

// Train sets the agent to training mode. The agent's policy is the
// same in both modes.
func (c *Continuous) Train() { c.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (c *Continuous) IsEval() bool { return c.eval }

// Step performs a single update to the agent, which is a no-op since
// the agent never learns
func (c *Continuous) Step() error { return nil }

// Observe records that an action lead to some timestep, which is a
// no-op since the agent never learns
func (c *Continuous) Observe(action mat.Vector, nextObs ts.TimeStep) error {
	return nil
}

// ObserveFirst records the first timestep in an episode, which is a
// no-op since the agent never learns
func (c *Continuous) ObserveFirst(t ts.TimeStep) error { return nil }

// EndEpisode performs cleanup at the end of an episode, which is a
// no-op since the agent never learns
func (c *Continuous) EndEpisode() {}
