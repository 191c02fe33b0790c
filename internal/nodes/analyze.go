// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"context"
	"fmt"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// nothingToAnalyzeMsg is the failure when the filter step left no hits.
const nothingToAnalyzeMsg = "nothing to analyze"

// Analyze extracts findings from the first MaxAnalyzedHits filtered
// hits, one LLM call per hit in input order. Each note inherits the
// hit's relevance score as its confidence.
func (n *Nodes) Analyze(ctx context.Context, s types.ResearchState) types.Update {
	if len(s.FilteredResults) == 0 {
		return fatal(NodeAnalyze, nothingToAnalyzeMsg)
	}

	hits := s.FilteredResults
	if len(hits) > n.cfg.MaxAnalyzedHits {
		hits = hits[:n.cfg.MaxAnalyzedHits]
	}

	notes := make([]types.AnalysisNote, 0, len(hits))
	entries := make([]types.Exchange, 0, len(hits))
	for _, hit := range hits {
		prompt, err := renderAnalyzePrompt(s.Query, hit)
		if err != nil {
			return fatal(NodeAnalyze, fmt.Sprintf("rendering analyze prompt: %v", err))
		}

		reply, err := n.invokeLLM(ctx, prompt)
		if err != nil {
			return failed(ctx, NodeAnalyze, fmt.Sprintf("analyzing %s", hit.URL), err)
		}

		notes = append(notes, types.AnalysisNote{
			Label:      hit.Title,
			Findings:   reply,
			Confidence: hit.Score,
		})
		entries = append(entries, logEntry(NodeAnalyze, fmt.Sprintf("analyzed %s", hit.URL)))
		fmt.Fprintf(n.w, "analyze: %s\n", hit.URL)
	}

	return types.Update{
		AnalysisNotes: notes,
		Phase:         types.PhaseSynthesizing,
		LogEntries:    entries,
	}
}
