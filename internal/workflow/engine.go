// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// maxSteps bounds the drive loop. The research graph terminates in at
// most seven node executions (the chain plus the bounded search retry
// back-edge); anything beyond this cap is a miswired router.
const maxSteps = 32

// Runnable is a compiled, immutable workflow graph. It is safe for
// concurrent use: each run threads its own state value.
type Runnable struct {
	entry   string
	nodes   map[string]NodeFunc
	routers map[string]RouterFunc
}

// StepFunc observes one state snapshot. It is invoked synchronously on
// the run's own goroutine, after every node execution including the
// terminal one.
type StepFunc func(state types.ResearchState)

// Run drives the workflow from the entry node until a router returns
// End or the state reaches an error phase, and returns the final
// state. The returned error reports engine misconfiguration only;
// node-level failures live in the state's Phase and Failure fields.
func (r *Runnable) Run(ctx context.Context, initial types.ResearchState) (types.ResearchState, error) {
	return r.RunStreaming(ctx, initial, nil)
}

// RunStreaming is Run with an observer: onStep receives the state
// after every node execution. Passing a nil onStep is equivalent to
// Run. Both entry points produce the same final state for the same
// initial state and collaborator behavior.
func (r *Runnable) RunStreaming(ctx context.Context, initial types.ResearchState, onStep StepFunc) (types.ResearchState, error) {
	state := initial
	current := r.entry

	for step := 0; ; step++ {
		if step >= maxSteps {
			return state, fmt.Errorf("workflow exceeded %d steps at node %q", maxSteps, current)
		}

		node, ok := r.nodes[current]
		if !ok {
			return state, fmt.Errorf("router selected unknown node %q", current)
		}

		state = state.Apply(node(ctx, state))

		if onStep != nil {
			onStep(state)
		}

		// Global halt rule: an error phase terminates the run before
		// any further routing or node dispatch.
		if state.Phase == types.PhaseError {
			return state, nil
		}

		next := r.routers[current](state)
		if next == End {
			return state, nil
		}
		current = next
	}
}

// Watch runs the workflow on its own goroutine and returns a channel
// of state snapshots plus a channel carrying the final result. The
// snapshot channel is buffered to the step bound so the engine never
// blocks on a slow consumer, and is closed after the terminal
// snapshot.
func (r *Runnable) Watch(ctx context.Context, initial types.ResearchState) (<-chan types.ResearchState, <-chan RunResult) {
	snapshots := make(chan types.ResearchState, maxSteps)
	done := make(chan RunResult, 1)

	go func() {
		defer close(snapshots)
		final, err := r.RunStreaming(ctx, initial, func(s types.ResearchState) {
			snapshots <- s
		})
		done <- RunResult{State: final, Err: err}
	}()

	return snapshots, done
}

// RunResult pairs a final state with an engine error, for delivery
// over Watch's result channel.
type RunResult struct {
	State types.ResearchState
	Err   error
}
