// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// Synthesize combines the analysis notes into the final structured
// report with one LLM call. A reply that does not parse as a report
// degrades to a prose-only report carrying the raw text; a formatting
// problem never fails the run at this stage.
func (n *Nodes) Synthesize(ctx context.Context, s types.ResearchState) types.Update {
	prompt, err := renderSynthesizePrompt(s.Query, s.AnalysisNotes)
	if err != nil {
		return fatal(NodeSynthesize, fmt.Sprintf("rendering synthesize prompt: %v", err))
	}

	reply, err := n.invokeLLM(ctx, prompt)
	if err != nil {
		return failed(ctx, NodeSynthesize, "synthesizing report", err)
	}

	report, ok := parseReport(reply)
	how := "synthesized structured report"
	if !ok {
		report = &types.Report{Summary: strings.TrimSpace(reply)}
		how = "reply not valid report JSON, degraded to prose summary"
	}
	report.Sources = sourceURLs(s.FilteredResults, n.cfg.MaxReportSources)

	fmt.Fprintf(n.w, "synthesize: %s (%d steps, %d sources)\n", how, len(report.MigrationSteps), len(report.Sources))
	return types.Update{
		Report:     report,
		Phase:      types.PhaseComplete,
		LogEntries: []types.Exchange{logEntry(NodeSynthesize, how)},
	}
}

// sourceURLs returns the URLs of up to max filtered hits, in order.
func sourceURLs(hits []types.SearchHit, max int) []string {
	if len(hits) > max {
		hits = hits[:max]
	}
	urls := make([]string, 0, len(hits))
	for _, h := range hits {
		urls = append(urls, h.URL)
	}
	return urls
}
