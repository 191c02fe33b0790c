// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nodes implements the five research workflow steps: refine,
// search, filter, analyze, and synthesize. Each node consumes the
// current research state and produces a sparse update; every fallible
// collaborator call is captured into the state's failure fields rather
// than surfaced as a Go error, so the engine halts on a single phase
// check.
package nodes

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jwmatthews/deep-research-agent/internal/workflow"
	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// Node names as registered in the workflow graph.
const (
	NodeRefine     = "refine"
	NodeSearch     = "search"
	NodeFilter     = "filter"
	NodeAnalyze    = "analyze"
	NodeSynthesize = "synthesize"
)

// LLMBackend abstracts the language-model collaborator so tests can
// supply a mock. Invoke sends one formatted prompt and returns the raw
// response text.
type LLMBackend interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// RawHit is an uncoerced result record from the search collaborator.
// The search node turns these into typed SearchHits.
type RawHit struct {
	Title   string
	URL     string
	Content string
	Score   float64
}

// SearchBackend abstracts the web-search collaborator.
type SearchBackend interface {
	Search(ctx context.Context, query string) ([]RawHit, error)
}

// Nodes bundles the collaborators and tuning knobs the node functions
// share. Progress lines go to w; pass io.Discard (or nil) to silence.
type Nodes struct {
	llm    LLMBackend
	search SearchBackend
	cfg    types.WorkflowConfig
	w      io.Writer
}

// New builds the node set.
func New(llm LLMBackend, search SearchBackend, cfg types.WorkflowConfig, w io.Writer) *Nodes {
	if w == nil {
		w = io.Discard
	}
	return &Nodes{llm: llm, search: search, cfg: cfg, w: w}
}

// Workflow wires the nodes and their routers into a compiled graph.
// The topology is a chain with one back-edge: search loops to refine
// while results are insufficient and retries remain.
func (n *Nodes) Workflow() (*workflow.Runnable, error) {
	return workflow.NewBuilder().
		AddNode(NodeRefine, n.Refine).
		AddNode(NodeSearch, n.Search).
		AddNode(NodeFilter, n.Filter).
		AddNode(NodeAnalyze, n.Analyze).
		AddNode(NodeSynthesize, n.Synthesize).
		AddRouter(NodeRefine, func(_ types.ResearchState) string {
			return NodeSearch
		}).
		AddRouter(NodeSearch, func(s types.ResearchState) string {
			if s.Phase == types.PhaseRefining {
				return NodeRefine
			}
			return NodeFilter
		}).
		AddRouter(NodeFilter, func(_ types.ResearchState) string {
			return NodeAnalyze
		}).
		AddRouter(NodeAnalyze, func(_ types.ResearchState) string {
			return NodeSynthesize
		}).
		AddRouter(NodeSynthesize, func(_ types.ResearchState) string {
			return workflow.End
		}).
		SetEntryPoint(NodeRefine).
		Compile()
}

// invokeLLM calls the LLM collaborator, applying the per-call timeout
// when configured.
func (n *Nodes) invokeLLM(ctx context.Context, prompt string) (string, error) {
	if n.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.CallTimeout)
		defer cancel()
	}
	return n.llm.Invoke(ctx, prompt)
}

// runSearch calls the search collaborator, applying the per-call
// timeout when configured.
func (n *Nodes) runSearch(ctx context.Context, query string) ([]RawHit, error) {
	if n.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.CallTimeout)
		defer cancel()
	}
	return n.search.Search(ctx, query)
}

// failed normalizes a collaborator error into an error-phase update.
// Caller cancellation is distinguished from provider failure so the
// façade can report "aborted" rather than "provider failed".
func failed(ctx context.Context, node, op string, err error) types.Update {
	msg := fmt.Sprintf("%s: %v", op, err)
	cancelled := ctx.Err() != nil
	if cancelled {
		msg = fmt.Sprintf("research cancelled during %s: %v", op, ctx.Err())
	}
	return types.Update{
		Phase:      types.PhaseError,
		Failure:    &msg,
		Cancelled:  cancelled,
		LogEntries: []types.Exchange{logEntry(node, msg)},
	}
}

// fatal builds an error-phase update for a non-collaborator failure.
func fatal(node, msg string) types.Update {
	return types.Update{
		Phase:      types.PhaseError,
		Failure:    &msg,
		LogEntries: []types.Exchange{logEntry(node, msg)},
	}
}

// logEntry builds one conversation-log record.
func logEntry(node, content string) types.Exchange {
	return types.Exchange{Node: node, Content: content, At: time.Now().UTC()}
}
