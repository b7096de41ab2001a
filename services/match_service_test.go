package services

import (
	"errors"
	"testing"

	"github.com/pitchside/tournament-engine/models"
)

func intPtr(v int) *int { return &v }

func TestValidateScoreInput(t *testing.T) {
	tests := []struct {
		name    string
		input   ScoreInput
		wantErr error
	}{
		{"plain result", ScoreInput{HomeScore: 2, AwayScore: 1}, nil},
		{"goalless draw", ScoreInput{}, nil},
		{"negative home score", ScoreInput{HomeScore: -1}, ErrScoreInvalid},
		{"negative away score", ScoreInput{AwayScore: -2}, ErrScoreInvalid},
		{"penalties both sides", ScoreInput{HomeScore: 1, AwayScore: 1, HomePenalties: intPtr(4), AwayPenalties: intPtr(3)}, nil},
		{"penalties one side only", ScoreInput{HomeScore: 1, AwayScore: 1, HomePenalties: intPtr(4)}, ErrPenaltiesInvalid},
		{"level penalties", ScoreInput{HomeScore: 1, AwayScore: 1, HomePenalties: intPtr(4), AwayPenalties: intPtr(4)}, ErrPenaltiesInvalid},
		{"negative penalties", ScoreInput{HomeScore: 1, AwayScore: 1, HomePenalties: intPtr(-1), AwayPenalties: intPtr(3)}, ErrPenaltiesInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateScoreInput(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("validateScoreInput(%+v) = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func squad(teamID, firstID int, positions ...models.PlayerPosition) []*models.Player {
	players := make([]*models.Player, len(positions))
	for i, pos := range positions {
		players[i] = &models.Player{ID: firstID + i, TeamID: teamID, Position: pos}
	}
	return players
}

func TestPlayerDeltas(t *testing.T) {
	match := &models.Match{
		ID: 1, HomeTeamID: 10, AwayTeamID: 20,
		HomeScore: 2, AwayScore: 0,
		Status: models.MatchFinished,
	}
	home := squad(10, 100, models.PositionGoalkeeper, models.PositionForward, models.PositionMidfielder)
	away := squad(20, 200, models.PositionGoalkeeper, models.PositionDefender)

	scorers := []*models.MatchScorer{
		{MatchID: 1, PlayerID: 101, TeamID: 10, Minute: 12},
		{MatchID: 1, PlayerID: 101, TeamID: 10, Minute: 55},
	}
	assists := []*models.MatchAssist{
		{MatchID: 1, PlayerID: 102, TeamID: 10},
	}

	deltas := playerDeltas(match, scorers, assists, home, away)

	if d := deltas[101]; d.Goals != 2 || d.Appearances != 1 {
		t.Errorf("scorer delta = %+v, want 2 goals, 1 appearance", d)
	}
	if d := deltas[102]; d.Assists != 1 || d.Appearances != 1 {
		t.Errorf("assister delta = %+v, want 1 assist, 1 appearance", d)
	}
	// The home side conceded nothing, so its keeper gets the clean sheet.
	if d := deltas[100]; d.CleanSheets != 1 || d.Appearances != 1 {
		t.Errorf("home keeper delta = %+v, want 1 clean sheet, 1 appearance", d)
	}
	// The away keeper conceded twice.
	if d, ok := deltas[200]; ok && d.CleanSheets != 0 {
		t.Errorf("away keeper delta = %+v, want no clean sheet", d)
	}
}

func TestPlayerDeltasBothCleanSheets(t *testing.T) {
	match := &models.Match{
		ID: 1, HomeTeamID: 10, AwayTeamID: 20,
		HomeScore: 0, AwayScore: 0,
		Status: models.MatchFinished,
	}
	home := squad(10, 100, models.PositionGoalkeeper)
	away := squad(20, 200, models.PositionDefender, models.PositionGoalkeeper)

	deltas := playerDeltas(match, nil, nil, home, away)
	if d := deltas[100]; d.CleanSheets != 1 {
		t.Errorf("home keeper delta = %+v, want a clean sheet", d)
	}
	// The first listed goalkeeper gets the clean sheet, position order
	// in the squad does not matter.
	if d := deltas[201]; d.CleanSheets != 1 {
		t.Errorf("away keeper delta = %+v, want a clean sheet", d)
	}
	if d, ok := deltas[200]; ok && !d.IsZero() {
		t.Errorf("away defender delta = %+v, want nothing", d)
	}
}

// The derivation must be a pure function of the match and its events:
// deriving twice and applying one negated leaves every counter at zero.
// Score corrections depend on this.
func TestPlayerDeltasDeterministic(t *testing.T) {
	match := &models.Match{
		ID: 1, HomeTeamID: 10, AwayTeamID: 20,
		HomeScore: 1, AwayScore: 0,
		Status: models.MatchFinished,
	}
	home := squad(10, 100, models.PositionGoalkeeper, models.PositionForward)
	away := squad(20, 200, models.PositionGoalkeeper)
	scorers := []*models.MatchScorer{{MatchID: 1, PlayerID: 101, TeamID: 10, Minute: 30}}

	first := playerDeltas(match, scorers, nil, home, away)
	second := playerDeltas(match, scorers, nil, home, away)

	if len(first) != len(second) {
		t.Fatalf("delta sets differ in size: %d vs %d", len(first), len(second))
	}
	for id, d := range first {
		net := models.PlayerDelta{
			Goals:       d.Goals + second[id].Neg().Goals,
			Assists:     d.Assists + second[id].Neg().Assists,
			Appearances: d.Appearances + second[id].Neg().Appearances,
			CleanSheets: d.CleanSheets + second[id].Neg().CleanSheets,
		}
		if !net.IsZero() {
			t.Errorf("player %d: delta and negated rederivation net to %+v, want zero", id, net)
		}
	}
}

func TestFirstGoalkeeper(t *testing.T) {
	players := squad(1, 10, models.PositionForward, models.PositionGoalkeeper, models.PositionGoalkeeper)
	if gk := firstGoalkeeper(players); gk == nil || gk.ID != 11 {
		t.Errorf("firstGoalkeeper = %+v, want player 11", gk)
	}
	if gk := firstGoalkeeper(squad(1, 10, models.PositionForward)); gk != nil {
		t.Errorf("firstGoalkeeper with no keeper = %+v, want nil", gk)
	}
}
