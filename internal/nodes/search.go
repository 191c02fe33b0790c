// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

const (
	// minContentLength drops hits whose content is too short to be
	// useful; hits at or under this length are discarded on coercion.
	minContentLength = 50

	// Quality rule for a sufficient search: at least one hit above
	// this score carrying more than qualityContentLength characters.
	qualityScore         = 0.7
	qualityContentLength = 200

	// retrySuffix is appended to the refined query on each retry to
	// disambiguate it before searching again.
	retrySuffix = " migration guide breaking changes"
)

// insufficientResultsMsg is the terminal failure after retries run out.
const insufficientResultsMsg = "insufficient search results"

// Search calls the search collaborator with the refined query (or the
// original question when refinement is absent) and validates result
// quality. Insufficient results loop back to refining with a suffixed
// query until the retry budget is spent; a transport failure is fatal
// immediately.
func (n *Nodes) Search(ctx context.Context, s types.ResearchState) types.Update {
	query := s.RefinedQuery
	if query == "" {
		query = s.Query
	}

	raw, err := n.runSearch(ctx, query)
	if err != nil {
		return failed(ctx, NodeSearch, "searching", err)
	}

	hits := coerceHits(raw)
	fmt.Fprintf(n.w, "search: %q returned %d usable hits\n", query, len(hits))

	if !sufficient(hits) {
		if s.RetryCount < n.cfg.MaxSearchRetries {
			retry := s.RetryCount + 1
			suffixed := query + retrySuffix
			fmt.Fprintf(n.w, "search: insufficient results, retry %d/%d\n", retry, n.cfg.MaxSearchRetries)
			return types.Update{
				RefinedQuery: &suffixed,
				RetryCount:   &retry,
				Phase:        types.PhaseRefining,
				LogEntries:   []types.Exchange{logEntry(NodeSearch, fmt.Sprintf("insufficient results for %q, retrying as %q", query, suffixed))},
			}
		}
		return fatal(NodeSearch, insufficientResultsMsg)
	}

	return types.Update{
		RawResults: hits,
		Phase:      types.PhaseFiltering,
		LogEntries: []types.Exchange{logEntry(NodeSearch, fmt.Sprintf("stored %d hits for %q", len(hits), query))},
	}
}

// coerceHits converts raw provider records into typed SearchHits,
// discarding records whose content is minContentLength characters or
// fewer and stamping the discovery time.
func coerceHits(raw []RawHit) []types.SearchHit {
	now := time.Now().UTC()
	var hits []types.SearchHit
	for _, r := range raw {
		if len(r.Content) <= minContentLength {
			continue
		}
		hits = append(hits, types.SearchHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
			FoundAt: now,
		})
	}
	return hits
}

// sufficient applies the quality rule: at least one hit with score
// above qualityScore and content longer than qualityContentLength.
func sufficient(hits []types.SearchHit) bool {
	for _, h := range hits {
		if h.Score > qualityScore && len(h.Content) > qualityContentLength {
			return true
		}
	}
	return false
}
