// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"reflect"
	"testing"
)

func TestParseIndexList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []int
		ok    bool
	}{
		{"json array", "[2, 0, 5]", []int{2, 0, 5}, true},
		{"bare numbers", "2, 0, 5", []int{2, 0, 5}, true},
		{"whitespace separated", "1 3 0", []int{1, 3, 0}, true},
		{"single index", "4", []int{4}, true},
		{"fenced json", "```json\n[1, 2]\n```", []int{1, 2}, true},
		{"empty json array", "[]", []int{}, true},
		{"prose", "the first and third results look best", nil, false},
		{"mixed tokens", "1, two, 3", nil, false},
		{"empty reply", "   ", nil, false},
		{"floats", "[1.5, 2]", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseIndexList(tt.reply)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("indices = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseReport(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		ok          bool
		wantSummary string
		wantSteps   int
	}{
		{
			name:        "clean object",
			reply:       `{"summary": "s", "migration_steps": ["a", "b"], "breaking_changes": []}`,
			ok:          true,
			wantSummary: "s",
			wantSteps:   2,
		},
		{
			name:        "object with surrounding prose",
			reply:       "Here you go:\n{\"summary\": \"s\", \"migration_steps\": [\"a\"], \"breaking_changes\": []}\nHope that helps!",
			ok:          true,
			wantSummary: "s",
			wantSteps:   1,
		},
		{
			name:  "no json at all",
			reply: "just a prose answer",
			ok:    false,
		},
		{
			name:  "malformed json",
			reply: `{"summary": "s", "migration_steps": [`,
			ok:    false,
		},
		{
			name:  "empty object",
			reply: "{}",
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := parseReport(tt.reply)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if r.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", r.Summary, tt.wantSummary)
			}
			if len(r.MigrationSteps) != tt.wantSteps {
				t.Errorf("steps = %d, want %d", len(r.MigrationSteps), tt.wantSteps)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  [1, 2]  ", "[1, 2]"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
