// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

func filteredState(nHits int) types.ResearchState {
	return types.NewResearchState("q").Apply(types.Update{
		FilteredResults: typedHits(goodHits(nHits)),
		Phase:           types.PhaseAnalyzing,
	})
}

func TestAnalyzeCapsAtThreeHits(t *testing.T) {
	llm := &scriptedLLM{fn: func(call int, _ string) (string, error) {
		return fmt.Sprintf("findings %d", call), nil
	}}
	n := testNodes(llm, constSearch(nil))
	s := filteredState(10)

	next := s.Apply(n.Analyze(context.Background(), s))

	if next.Phase != types.PhaseSynthesizing {
		t.Fatalf("Phase = %q, want synthesizing", next.Phase)
	}
	if llm.calls != 3 {
		t.Errorf("LLM calls = %d, want 3", llm.calls)
	}
	if len(next.AnalysisNotes) != 3 {
		t.Fatalf("AnalysisNotes = %d, want 3", len(next.AnalysisNotes))
	}
	for i, note := range next.AnalysisNotes {
		hit := s.FilteredResults[i]
		if note.Label != hit.Title {
			t.Errorf("note %d label = %q, want %q (input order)", i, note.Label, hit.Title)
		}
		if note.Confidence != hit.Score {
			t.Errorf("note %d confidence = %v, want hit score %v", i, note.Confidence, hit.Score)
		}
		if note.Findings != fmt.Sprintf("findings %d", i) {
			t.Errorf("note %d findings = %q", i, note.Findings)
		}
	}
}

func TestAnalyzeFewerHitsThanCap(t *testing.T) {
	llm := constLLM("findings")
	n := testNodes(llm, constSearch(nil))
	s := filteredState(2)

	next := s.Apply(n.Analyze(context.Background(), s))

	if llm.calls != 2 || len(next.AnalysisNotes) != 2 {
		t.Errorf("calls = %d, notes = %d, want 2/2", llm.calls, len(next.AnalysisNotes))
	}
}

func TestAnalyzeEmptyInputIsFatal(t *testing.T) {
	n := testNodes(constLLM("findings"), constSearch(nil))
	s := types.NewResearchState("q").Apply(types.Update{Phase: types.PhaseAnalyzing})

	next := s.Apply(n.Analyze(context.Background(), s))

	if next.Phase != types.PhaseError {
		t.Fatalf("Phase = %q, want error", next.Phase)
	}
	if next.Failure != nothingToAnalyzeMsg {
		t.Errorf("Failure = %q, want %q", next.Failure, nothingToAnalyzeMsg)
	}
}

func TestAnalyzeCancellationMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := &scriptedLLM{fn: func(call int, _ string) (string, error) {
		if call == 0 {
			return "first findings", nil
		}
		// The caller aborts while the second call is pending.
		cancel()
		return "", context.Canceled
	}}
	n := testNodes(llm, constSearch(nil))
	s := filteredState(3)

	next := s.Apply(n.Analyze(ctx, s))

	if next.Phase != types.PhaseError || !next.Cancelled {
		t.Fatalf("Phase = %q, Cancelled = %v; want cancelled error", next.Phase, next.Cancelled)
	}
	if !strings.Contains(next.Failure, "research cancelled") {
		t.Errorf("Failure = %q", next.Failure)
	}
	if next.Report != nil {
		t.Error("cancelled run must not carry a report")
	}
	if next.AnalysisNotes != nil {
		t.Error("partial notes must not be stored on cancellation")
	}
}
