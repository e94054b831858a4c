package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Execution state of a pipeline.
type State int

const (
	Idle State = iota
	Building
)

// Returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Building:
		return "building"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// A named unit of pipeline work.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runs an ordered list of steps with abort-on-failure semantics.
//
// The pipeline is Building while steps execute and returns to Idle when the
// run completes or fails. The first failing step aborts all later steps;
// there is no partial-success state and nothing is retried.
type Pipeline struct {
	steps []Step

	mu    sync.Mutex
	state State
}

// Creates a pipeline from the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Returns the current execution state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Executes the steps in order.
//
// Each step sees the same context; a cancelled context fails the current
// step and aborts the rest. The error identifies the failing step.
func (p *Pipeline) Run(ctx context.Context) error {
	p.setState(Building)
	defer p.setState(Idle)

	for i, step := range p.steps {
		slog.Debug("running step", "step", i+1, "name", step.Name)

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: step %d (%s): %w", ErrPipeline, i+1, step.Name, err)
		}

		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("%w: step %d (%s): %w", ErrPipeline, i+1, step.Name, err)
		}
	}

	return nil
}

// Sets the execution state.
func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
