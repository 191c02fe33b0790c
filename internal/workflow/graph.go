// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow implements the research workflow graph: a fixed set
// of named nodes, a router table deciding the edge taken after each
// node, and a driver that threads a ResearchState along the chosen
// path until a terminal condition.
//
// The topology is wired once through a Builder and compiled into an
// immutable Runnable; execution holds no state of its own beyond the
// value threaded through it, so one Runnable may serve any number of
// concurrent runs.
package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// End is the router return value that terminates the workflow.
const End = "__end__"

// NodeFunc is one workflow step. It receives a read-only value copy of
// the current state and returns a sparse update. Failures are encoded
// in the update (PhaseError plus a failure message), never returned:
// the engine has a single halt check instead of per-node error paths.
type NodeFunc func(ctx context.Context, state types.ResearchState) types.Update

// RouterFunc inspects the post-update state and names the next node,
// or returns End. Routers are pure functions of state.
type RouterFunc func(state types.ResearchState) string

// Builder accumulates nodes and routers before compilation.
type Builder struct {
	entry   string
	nodes   map[string]NodeFunc
	routers map[string]RouterFunc
}

// NewBuilder returns an empty workflow builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:   make(map[string]NodeFunc),
		routers: make(map[string]RouterFunc),
	}
}

// AddNode registers a named node. Re-registering a name overwrites the
// previous function.
func (b *Builder) AddNode(name string, fn NodeFunc) *Builder {
	b.nodes[name] = fn
	return b
}

// AddRouter registers the decision function consulted after the named
// node executes.
func (b *Builder) AddRouter(name string, fn RouterFunc) *Builder {
	b.routers[name] = fn
	return b
}

// SetEntryPoint names the node execution starts from.
func (b *Builder) SetEntryPoint(name string) *Builder {
	b.entry = name
	return b
}

// Compile validates the wiring and returns an immutable Runnable.
// Every node must have a router, the entry point must exist, and at
// least one node must be registered.
func (b *Builder) Compile() (*Runnable, error) {
	if len(b.nodes) == 0 {
		return nil, fmt.Errorf("workflow has no nodes")
	}
	if b.entry == "" {
		return nil, fmt.Errorf("workflow entry point not set")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("entry point %q is not a registered node", b.entry)
	}

	var missing []string
	for name := range b.nodes {
		if _, ok := b.routers[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("nodes without routers: %v", missing)
	}

	nodes := make(map[string]NodeFunc, len(b.nodes))
	for k, v := range b.nodes {
		nodes[k] = v
	}
	routers := make(map[string]RouterFunc, len(b.routers))
	for k, v := range b.routers {
		routers[k] = v
	}

	return &Runnable{
		entry:   b.entry,
		nodes:   nodes,
		routers: routers,
	}, nil
}
