package models

import "testing"

func intPtr(v int) *int { return &v }

func TestMatchWinner(t *testing.T) {
	tests := []struct {
		name   string
		match  Match
		wantID int
		wantOK bool
	}{
		{
			name:   "home win",
			match:  Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 3, AwayScore: 1, Status: MatchFinished},
			wantID: 1, wantOK: true,
		},
		{
			name:   "away win",
			match:  Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 0, AwayScore: 2, Status: MatchFinished},
			wantID: 2, wantOK: true,
		},
		{
			name:   "draw decided on penalties for home",
			match:  Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 1, AwayScore: 1, HomePenalties: intPtr(5), AwayPenalties: intPtr(4), Status: MatchFinished},
			wantID: 1, wantOK: true,
		},
		{
			name:   "draw decided on penalties for away",
			match:  Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 0, AwayScore: 0, HomePenalties: intPtr(2), AwayPenalties: intPtr(3), Status: MatchFinished},
			wantID: 2, wantOK: true,
		},
		{
			name:   "draw without penalties has no winner",
			match:  Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 2, AwayScore: 2, Status: MatchFinished},
			wantOK: false,
		},
		{
			name:   "draw with level penalties has no winner",
			match:  Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 1, AwayScore: 1, HomePenalties: intPtr(4), AwayPenalties: intPtr(4), Status: MatchFinished},
			wantOK: false,
		},
		{
			name:   "scheduled match has no winner",
			match:  Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 3, AwayScore: 0, Status: MatchScheduled},
			wantOK: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotID, gotOK := tc.match.Winner()
			if gotOK != tc.wantOK {
				t.Fatalf("Winner() ok = %v, want %v", gotOK, tc.wantOK)
			}
			if gotOK && gotID != tc.wantID {
				t.Errorf("Winner() = %d, want %d", gotID, tc.wantID)
			}
		})
	}
}

func TestResultDeltaFor(t *testing.T) {
	match := &Match{HomeTeamID: 10, AwayTeamID: 20, HomeScore: 3, AwayScore: 1, Status: MatchFinished}

	home := ResultDeltaFor(match, 10)
	want := ResultDelta{Wins: 1, GoalsFor: 3, GoalsAgainst: 1}
	if home != want {
		t.Errorf("home delta = %+v, want %+v", home, want)
	}

	away := ResultDeltaFor(match, 20)
	want = ResultDelta{Losses: 1, GoalsFor: 1, GoalsAgainst: 3}
	if away != want {
		t.Errorf("away delta = %+v, want %+v", away, want)
	}

	if got := ResultDeltaFor(match, 99); !got.IsZero() {
		t.Errorf("delta for uninvolved team = %+v, want zero", got)
	}

	scheduled := &Match{HomeTeamID: 10, AwayTeamID: 20, HomeScore: 3, AwayScore: 1, Status: MatchScheduled}
	if got := ResultDeltaFor(scheduled, 10); !got.IsZero() {
		t.Errorf("delta for scheduled match = %+v, want zero", got)
	}
}

func TestResultDeltaForDraw(t *testing.T) {
	match := &Match{HomeTeamID: 10, AwayTeamID: 20, HomeScore: 2, AwayScore: 2, Status: MatchFinished}
	for _, teamID := range []int{10, 20} {
		d := ResultDeltaFor(match, teamID)
		want := ResultDelta{Draws: 1, GoalsFor: 2, GoalsAgainst: 2}
		if d != want {
			t.Errorf("draw delta for team %d = %+v, want %+v", teamID, d, want)
		}
	}
}

// A correction applies the old delta negated, then the new delta. The
// net effect on the counters must be exactly the difference between the
// two results.
func TestResultDeltaReversal(t *testing.T) {
	old := &Match{HomeTeamID: 10, AwayTeamID: 20, HomeScore: 2, AwayScore: 0, Status: MatchFinished}
	corrected := &Match{HomeTeamID: 10, AwayTeamID: 20, HomeScore: 2, AwayScore: 2, Status: MatchFinished}

	apply := func(counters *ResultDelta, d ResultDelta) {
		counters.Wins += d.Wins
		counters.Draws += d.Draws
		counters.Losses += d.Losses
		counters.GoalsFor += d.GoalsFor
		counters.GoalsAgainst += d.GoalsAgainst
	}

	var home ResultDelta
	apply(&home, ResultDeltaFor(old, 10))
	apply(&home, ResultDeltaFor(old, 10).Neg())
	apply(&home, ResultDeltaFor(corrected, 10))

	want := ResultDelta{Draws: 1, GoalsFor: 2, GoalsAgainst: 2}
	if home != want {
		t.Errorf("corrected home counters = %+v, want %+v", home, want)
	}
}
