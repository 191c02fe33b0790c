// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

func refinedState(query, refined string, retries int) types.ResearchState {
	return types.NewResearchState(query).Apply(types.Update{
		RefinedQuery: strPtr(refined),
		RetryCount:   intPtr(retries),
		Phase:        types.PhaseSearching,
	})
}

func TestSearchStoresSufficientHits(t *testing.T) {
	search := constSearch(goodHits(5))
	n := testNodes(constLLM(""), search)
	s := refinedState("q", "q refined", 0)

	next := s.Apply(n.Search(context.Background(), s))

	if next.Phase != types.PhaseFiltering {
		t.Fatalf("Phase = %q, want filtering", next.Phase)
	}
	if len(next.RawResults) != 5 {
		t.Errorf("RawResults = %d, want 5", len(next.RawResults))
	}
	if search.queries[0] != "q refined" {
		t.Errorf("searched %q, want the refined query", search.queries[0])
	}
	for _, h := range next.RawResults {
		if h.FoundAt.IsZero() {
			t.Error("hit missing discovery timestamp")
		}
	}
}

func TestSearchUsesOriginalQueryWithoutRefinement(t *testing.T) {
	search := constSearch(goodHits(1))
	n := testNodes(constLLM(""), search)
	s := types.NewResearchState("original question")

	n.Search(context.Background(), s)

	if search.queries[0] != "original question" {
		t.Errorf("searched %q, want the original query", search.queries[0])
	}
}

func TestSearchDiscardsShortContent(t *testing.T) {
	hits := goodHits(2)
	hits = append(hits, RawHit{Title: "thin", URL: "https://example.com/thin", Content: strings.Repeat("x", 50), Score: 0.99})
	n := testNodes(constLLM(""), constSearch(hits))
	s := refinedState("q", "q", 0)

	next := s.Apply(n.Search(context.Background(), s))

	if len(next.RawResults) != 2 {
		t.Fatalf("RawResults = %d, want 2 (short hit dropped)", len(next.RawResults))
	}
	for _, h := range next.RawResults {
		if h.Title == "thin" {
			t.Error("hit with 50-char content survived coercion")
		}
	}
}

func TestSearchInsufficientTriggersRetry(t *testing.T) {
	// High score but thin content: fails the quality rule.
	weak := []RawHit{{Title: "w", URL: "u", Content: strings.Repeat("x", 100), Score: 0.9}}
	n := testNodes(constLLM(""), constSearch(weak))
	s := refinedState("q", "q refined", 0)

	next := s.Apply(n.Search(context.Background(), s))

	if next.Phase != types.PhaseRefining {
		t.Fatalf("Phase = %q, want refining loop-back", next.Phase)
	}
	if next.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", next.RetryCount)
	}
	if next.RefinedQuery != "q refined"+retrySuffix {
		t.Errorf("RefinedQuery = %q, want disambiguation suffix appended", next.RefinedQuery)
	}
	if next.RawResults != nil {
		t.Error("insufficient results must not be stored")
	}
}

func TestSearchExhaustedRetriesIsFatal(t *testing.T) {
	n := testNodes(constLLM(""), constSearch(nil))
	s := refinedState("q", "q refined", 2)

	next := s.Apply(n.Search(context.Background(), s))

	if next.Phase != types.PhaseError {
		t.Fatalf("Phase = %q, want error", next.Phase)
	}
	if next.Failure != insufficientResultsMsg {
		t.Errorf("Failure = %q, want %q", next.Failure, insufficientResultsMsg)
	}
	if next.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2 (never exceeds the maximum)", next.RetryCount)
	}
}

func TestSearchTransportFailureIsFatal(t *testing.T) {
	search := &scriptedSearch{fn: func(int, string) ([]RawHit, error) {
		return nil, errors.New("connection refused")
	}}
	n := testNodes(constLLM(""), search)
	s := refinedState("q", "q", 0)

	next := s.Apply(n.Search(context.Background(), s))

	if next.Phase != types.PhaseError {
		t.Fatalf("Phase = %q, want error", next.Phase)
	}
	if !strings.Contains(next.Failure, "searching") {
		t.Errorf("Failure = %q", next.Failure)
	}
	if next.RetryCount != 0 {
		t.Error("transport failures must not consume retries")
	}
}

func TestSufficient(t *testing.T) {
	long := strings.Repeat("x", 201)
	short := strings.Repeat("x", 200)
	tests := []struct {
		name string
		hits []types.SearchHit
		want bool
	}{
		{"empty", nil, false},
		{"good hit", []types.SearchHit{{Score: 0.71, Content: long}}, true},
		{"score at threshold", []types.SearchHit{{Score: 0.7, Content: long}}, false},
		{"content at threshold", []types.SearchHit{{Score: 0.9, Content: short}}, false},
		{"one of many", []types.SearchHit{{Score: 0.1, Content: "x"}, {Score: 0.8, Content: long}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sufficient(tt.hits); got != tt.want {
				t.Errorf("sufficient() = %v, want %v", got, tt.want)
			}
		})
	}
}
