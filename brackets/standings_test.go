package brackets

import (
	"testing"

	"github.com/pitchside/tournament-engine/models"
)

func finished(home, away, homeScore, awayScore int) *models.Match {
	return &models.Match{
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Status:     models.MatchFinished,
	}
}

func TestComputeStandings(t *testing.T) {
	teams := makeTeams(4)
	matches := []*models.Match{
		finished(1, 2, 3, 0), // 1 beats 2
		finished(3, 4, 1, 1), // 3 draws 4
		finished(1, 3, 2, 1), // 1 beats 3
		finished(2, 4, 0, 2), // 4 beats 2
		// still to be played, counts toward Played only
		{HomeTeamID: 1, AwayTeamID: 4, Status: models.MatchScheduled},
	}

	rows := ComputeStandings(teams, matches)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	wantOrder := []int{1, 4, 3, 2}
	for i, row := range rows {
		if row.TeamID != wantOrder[i] {
			t.Fatalf("position %d is team %d, want %d (rows: %+v)", i+1, row.TeamID, wantOrder[i], rows)
		}
	}

	top := rows[0]
	if top.Points != 6 || top.Wins != 2 || top.Played != 3 {
		t.Errorf("leader row = %+v, want 6 points, 2 wins, 3 played", top)
	}
	if top.GoalsFor != 5 || top.GoalsAgainst != 1 || top.GoalDifference != 4 {
		t.Errorf("leader goals = %d:%d (diff %d), want 5:1 (4)", top.GoalsFor, top.GoalsAgainst, top.GoalDifference)
	}
	if top.Team == nil || top.Team.ID != 1 {
		t.Errorf("leader team not populated: %+v", top.Team)
	}
}

// Points ties break on goal difference, then goals scored.
func TestComputeStandingsTiebreakers(t *testing.T) {
	teams := makeTeams(3)
	matches := []*models.Match{
		finished(1, 3, 4, 0),
		finished(2, 3, 2, 0),
		finished(1, 2, 1, 1),
	}

	rows := ComputeStandings(teams, matches)
	wantOrder := []int{1, 2, 3}
	for i, row := range rows {
		if row.TeamID != wantOrder[i] {
			t.Fatalf("position %d is team %d, want %d", i+1, row.TeamID, wantOrder[i])
		}
	}
}

// Matches referencing teams outside the list are ignored, which scopes
// a shared match set to one group.
func TestComputeStandingsIgnoresForeignMatches(t *testing.T) {
	teams := makeTeams(2)
	matches := []*models.Match{
		finished(1, 2, 1, 0),
		finished(1, 99, 0, 5),
		finished(98, 2, 0, 5),
	}

	rows := ComputeStandings(teams, matches)
	if rows[0].TeamID != 1 || rows[0].Played != 1 || rows[0].Points != 3 {
		t.Errorf("leader row = %+v, want team 1 with 1 played, 3 points", rows[0])
	}
	if rows[1].Played != 1 || rows[1].GoalsFor != 0 {
		t.Errorf("second row = %+v, foreign match leaked in", rows[1])
	}
}

func TestComputeGroupStandings(t *testing.T) {
	teams := makeTeams(8) // Group A: 1-4, Group B: 5-8
	matches := []*models.Match{
		finished(1, 2, 2, 0),
		finished(5, 6, 0, 1),
	}
	matches[0].Stage = models.GroupStage("Group A", 1)
	matches[1].Stage = models.GroupStage("Group B", 1)

	tables := ComputeGroupStandings(teams, matches)
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].Name != "Group A" || tables[1].Name != "Group B" {
		t.Fatalf("table names = %q, %q", tables[0].Name, tables[1].Name)
	}
	if tables[0].Table[0].TeamID != 1 {
		t.Errorf("Group A leader = %d, want 1", tables[0].Table[0].TeamID)
	}
	if tables[1].Table[0].TeamID != 6 {
		t.Errorf("Group B leader = %d, want 6", tables[1].Table[0].TeamID)
	}
	for _, row := range tables[0].Table {
		if row.TeamID > 4 {
			t.Errorf("Group A table contains team %d from Group B", row.TeamID)
		}
	}
}
