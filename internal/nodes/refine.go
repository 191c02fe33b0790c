// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// Refine turns the raw user question into a search-oriented phrase via
// one LLM call. There is no retry here: an LLM failure ends the run.
//
// On a search-retry loop-back the refined query already carries the
// disambiguation suffix appended by the search node, so Refine passes
// it through unchanged instead of re-deriving it.
func (n *Nodes) Refine(ctx context.Context, s types.ResearchState) types.Update {
	if s.RetryCount > 0 && s.RefinedQuery != "" {
		fmt.Fprintf(n.w, "refine: retry %d, reusing %q\n", s.RetryCount, s.RefinedQuery)
		return types.Update{
			Phase:      types.PhaseSearching,
			LogEntries: []types.Exchange{logEntry(NodeRefine, fmt.Sprintf("retry %d: reusing refined query %q", s.RetryCount, s.RefinedQuery))},
		}
	}

	prompt, err := renderRefinePrompt(s.Query)
	if err != nil {
		return fatal(NodeRefine, fmt.Sprintf("rendering refine prompt: %v", err))
	}

	reply, err := n.invokeLLM(ctx, prompt)
	if err != nil {
		return failed(ctx, NodeRefine, "refining query", err)
	}

	refined := firstLine(reply)
	if refined == "" {
		refined = s.Query
	}

	fmt.Fprintf(n.w, "refine: %q -> %q\n", s.Query, refined)
	return types.Update{
		RefinedQuery: &refined,
		Phase:        types.PhaseSearching,
		LogEntries:   []types.Exchange{logEntry(NodeRefine, fmt.Sprintf("refined query: %q", refined))},
	}
}

// firstLine returns the first non-empty line of a model reply, with
// surrounding quotes stripped.
func firstLine(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line != "" {
			return line
		}
	}
	return ""
}
