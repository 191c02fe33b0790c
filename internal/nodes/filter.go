// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// fallbackKeep is how many hits the deterministic fallback retains
// when the model's index list cannot be parsed.
const fallbackKeep = 5

// Filter asks the LLM to rank the raw hits by returning a list of
// indices. Indices outside the valid range are discarded. When the
// reply cannot be parsed as an index list at all, the node degrades
// gracefully to the top hits by score instead of failing the run.
func (n *Nodes) Filter(ctx context.Context, s types.ResearchState) types.Update {
	prompt, err := renderFilterPrompt(s.Query, s.RawResults)
	if err != nil {
		return fatal(NodeFilter, fmt.Sprintf("rendering filter prompt: %v", err))
	}

	reply, err := n.invokeLLM(ctx, prompt)
	if err != nil {
		return failed(ctx, NodeFilter, "filtering results", err)
	}

	var filtered []types.SearchHit
	var how string
	if indices, ok := parseIndexList(reply); ok {
		for _, idx := range indices {
			if idx < 0 || idx >= len(s.RawResults) {
				continue
			}
			filtered = append(filtered, s.RawResults[idx])
		}
		how = fmt.Sprintf("model selected %d of %d hits", len(filtered), len(s.RawResults))
	} else {
		filtered = topByScore(s.RawResults, fallbackKeep)
		how = fmt.Sprintf("unparsable ranking reply, fell back to top %d by score", len(filtered))
	}

	fmt.Fprintf(n.w, "filter: %s\n", how)
	return types.Update{
		FilteredResults: filtered,
		Phase:           types.PhaseAnalyzing,
		LogEntries:      []types.Exchange{logEntry(NodeFilter, how)},
	}
}

// topByScore returns up to keep hits sorted by descending score,
// without disturbing the input slice.
func topByScore(hits []types.SearchHit, keep int) []types.SearchHit {
	sorted := make([]types.SearchHit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > keep {
		sorted = sorted[:keep]
	}
	return sorted
}
