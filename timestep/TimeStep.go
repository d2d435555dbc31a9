// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either a first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes how an episode ended. Episodes may end because the
// environment reached a terminal state or because some step limit was
// reached before a terminal state. Agents may want to treat these two
// endings differently: the value of a terminal state is 0, but the
// value of a state at which an episode times out may be non-zero.
type EndType int

const (
	// Nil denotes an episode that has not yet ended
	Nil EndType = iota

	// TerminalStateReached denotes an episode that ended by reaching
	// a terminal state
	TerminalStateReached

	// Timeout denotes an episode that ended by reaching a step limit
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Nil"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int

	endType EndType
}

// New constructs a new TimeStep. TimeSteps are constructed with an
// ending type of Nil; if the step ends its episode, the ending type
// should be set with SetEnd.
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{t, r, d, o, n, Nil}
}

// SetEnd sets the way in which the TimeStep ended its episode
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndType returns the way in which the TimeStep ended its episode,
// which is Nil for any step that is not the last in its episode
func (t TimeStep) EndType() EndType {
	return t.endType
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
