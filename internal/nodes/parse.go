// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// Model replies are untrusted text. Each parser here returns a typed
// value plus an ok flag; callers define an explicit fallback for every
// parse failure instead of erroring out.

// parseIndexList extracts an ordered list of integer indices from a
// model reply. Accepted forms: a JSON array of integers, or a plain
// comma/whitespace-separated list with optional brackets. Any other
// shape reports ok=false.
func parseIndexList(reply string) ([]int, bool) {
	text := stripFences(reply)

	var indices []int
	if err := json.Unmarshal([]byte(text), &indices); err == nil {
		return indices, true
	}

	text = strings.Trim(text, "[]")
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, false
	}

	indices = indices[:0]
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		indices = append(indices, n)
	}
	return indices, true
}

// reportPayload mirrors the JSON shape requested by the synthesize
// prompt.
type reportPayload struct {
	Summary         string   `json:"summary"`
	MigrationSteps  []string `json:"migration_steps"`
	BreakingChanges []string `json:"breaking_changes"`
	Examples        []string `json:"examples"`
}

// parseReport decodes a model reply into a Report. It tolerates code
// fences and surrounding prose by extracting the outermost JSON
// object. ok=false means the caller should degrade rather than fail.
func parseReport(reply string) (*types.Report, bool) {
	text := extractObject(stripFences(reply))
	if text == "" {
		return nil, false
	}

	var p reportPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, false
	}
	if p.Summary == "" && len(p.MigrationSteps) == 0 && len(p.BreakingChanges) == 0 {
		return nil, false
	}

	return &types.Report{
		Summary:         p.Summary,
		MigrationSteps:  p.MigrationSteps,
		BreakingChanges: p.BreakingChanges,
		Examples:        p.Examples,
	}, true
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}[]") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractObject returns the substring from the first '{' through the
// last '}', or "" when no object is present.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
