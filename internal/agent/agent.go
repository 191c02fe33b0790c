// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent is the caller-facing entry point for the research
// workflow. It builds the initial state, lazily compiles the workflow
// graph once, drives it to completion, and translates a terminal error
// state into a returned error. Raw collaborator errors never reach
// callers; they arrive here already normalized into the state.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jwmatthews/deep-research-agent/internal/nodes"
	"github.com/jwmatthews/deep-research-agent/internal/session"
	"github.com/jwmatthews/deep-research-agent/internal/workflow"
	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// ErrCancelled marks a run aborted by the caller, as opposed to one
// that failed because a collaborator did. Test with errors.Is.
var ErrCancelled = errors.New("research cancelled")

// Agent drives research queries through the compiled workflow graph.
// The graph is built on first use and shared by all subsequent
// queries; per-query state is never shared between concurrent runs.
type Agent struct {
	nodes *nodes.Nodes
	store *session.Store
	w     io.Writer

	once     sync.Once
	graph    *workflow.Runnable
	graphErr error
}

// Option configures an Agent.
type Option func(*Agent)

// WithStore attaches a session store; terminal states are persisted
// after every run, best-effort.
func WithStore(s *session.Store) Option {
	return func(a *Agent) { a.store = s }
}

// WithProgress directs progress lines to w (default: discarded).
func WithProgress(w io.Writer) Option {
	return func(a *Agent) { a.w = w }
}

// New builds an Agent around the two collaborators.
func New(cfg types.AgentConfig, llm nodes.LLMBackend, search nodes.SearchBackend, opts ...Option) *Agent {
	a := &Agent{w: io.Discard}
	for _, opt := range opts {
		opt(a)
	}
	a.nodes = nodes.New(llm, search, cfg.Workflow, a.w)
	return a
}

// compiled returns the workflow graph, building it exactly once.
func (a *Agent) compiled() (*workflow.Runnable, error) {
	a.once.Do(func() {
		a.graph, a.graphErr = a.nodes.Workflow()
	})
	return a.graph, a.graphErr
}

// ExecuteQuery answers a migration question, blocking until the
// workflow terminates, and returns the synthesized report.
func (a *Agent) ExecuteQuery(ctx context.Context, text string) (*types.Report, error) {
	return a.ExecuteQueryStream(ctx, text, nil)
}

// ExecuteQueryStream is ExecuteQuery with an observer: onStep receives
// every intermediate state snapshot, including the terminal one, on
// the calling goroutine. Both variants produce the same result for
// the same inputs.
func (a *Agent) ExecuteQueryStream(ctx context.Context, text string, onStep workflow.StepFunc) (*types.Report, error) {
	final, err := a.Research(ctx, text, onStep)
	if err != nil {
		return nil, err
	}

	if final.Phase == types.PhaseError {
		if final.Cancelled {
			return nil, fmt.Errorf("%w: %s", ErrCancelled, final.Failure)
		}
		return nil, errors.New(final.Failure)
	}
	return final.Report, nil
}

// Research runs the workflow and returns the full terminal state. The
// returned error covers engine problems only; domain failures are in
// the state's Phase and Failure fields. Most callers want
// ExecuteQuery instead.
func (a *Agent) Research(ctx context.Context, text string, onStep workflow.StepFunc) (types.ResearchState, error) {
	if strings.TrimSpace(text) == "" {
		return types.ResearchState{}, fmt.Errorf("query is empty: provide a migration question")
	}

	graph, err := a.compiled()
	if err != nil {
		return types.ResearchState{}, fmt.Errorf("compiling workflow: %w", err)
	}

	final, err := graph.RunStreaming(ctx, types.NewResearchState(text), onStep)
	if err != nil {
		return final, fmt.Errorf("running workflow: %w", err)
	}

	a.persist(final)
	return final, nil
}

// persist saves a terminal state to the session store, if one is
// attached. Persistence problems are reported but never fail the run.
func (a *Agent) persist(final types.ResearchState) {
	if a.store == nil || !final.Phase.Terminal() {
		return
	}
	if _, err := a.store.Save(context.Background(), final); err != nil {
		fmt.Fprintf(a.w, "warning: could not save session: %v\n", err)
	}
}
