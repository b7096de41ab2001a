package models

import "testing"

func TestParseStage(t *testing.T) {
	tests := []struct {
		label   string
		want    Stage
		wantErr bool
	}{
		{"Group A - Round 3", GroupStage("Group A", 3), false},
		{"Group B - Round 1", GroupStage("Group B", 1), false},
		{"  Group C - Round 2  ", GroupStage("Group C", 2), false},
		{"Final", KnockoutStage("Final"), false},
		{"Semi-Finals", KnockoutStage("Semi-Finals"), false},
		{"Quarter-Finals", KnockoutStage("Quarter-Finals"), false},
		{"Round of 16", KnockoutStage("Round of 16"), false},
		{"Round 1", KnockoutStage("Round 1"), false},
		{"Round 12", KnockoutStage("Round 12"), false},
		{"", Stage{}, true},
		{"Playoffs", Stage{}, true},
		{"Group A Round 3", Stage{}, true},
	}
	for _, tc := range tests {
		got, err := ParseStage(tc.label)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseStage(%q): want error, got %+v", tc.label, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStage(%q): unexpected error %v", tc.label, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStage(%q) = %+v, want %+v", tc.label, got, tc.want)
		}
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{GroupStage("Group A", 3), "Group A - Round 3"},
		{LeagueStage(2), "Round 2"},
		{KnockoutStage("Semi-Finals"), "Semi-Finals"},
		{Stage{}, ""},
	}
	for _, tc := range tests {
		if got := tc.stage.String(); got != tc.want {
			t.Errorf("Stage%+v.String() = %q, want %q", tc.stage, got, tc.want)
		}
	}
}

// The final check must be exact: "Final" is a substring of other round
// labels and those must never be treated as the terminal round.
func TestStageIsFinal(t *testing.T) {
	tests := []struct {
		stage Stage
		want  bool
	}{
		{KnockoutStage("Final"), true},
		{KnockoutStage("final"), true},
		{KnockoutStage("  Final  "), true},
		{KnockoutStage("Semi-Finals"), false},
		{KnockoutStage("Quarter-Finals"), false},
		{KnockoutStage("Round 1"), false},
		{GroupStage("Group A", 1), false},
		{LeagueStage(1), false},
	}
	for _, tc := range tests {
		if got := tc.stage.IsFinal(); got != tc.want {
			t.Errorf("Stage%+v.IsFinal() = %v, want %v", tc.stage, got, tc.want)
		}
	}
}

func TestStageRoundTrip(t *testing.T) {
	stages := []Stage{
		GroupStage("Group A", 1),
		GroupStage("Group D", 7),
		KnockoutStage("Quarter-Finals"),
		KnockoutStage("Final"),
	}
	for _, s := range stages {
		got, err := ParseStage(s.String())
		if err != nil {
			t.Fatalf("ParseStage(%q): %v", s.String(), err)
		}
		if got != s {
			t.Errorf("ParseStage(%q) = %+v, want %+v", s.String(), got, s)
		}
	}
}
