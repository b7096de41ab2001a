package brackets

import (
	"context"
	"testing"
	"time"

	"github.com/pitchside/tournament-engine/models"
)

var testStart = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func leagueTournament(id int) *models.Tournament {
	return &models.Tournament{ID: id, Format: models.FormatLeague}
}

func generateLeague(t *testing.T, teams []*models.Team, existing []*models.Match) []*models.Match {
	t.Helper()
	matches, err := NewLeagueGenerator().GenerateFixtures(context.Background(), GenerateParams{
		Tournament: leagueTournament(1),
		Teams:      teams,
		Existing:   existing,
		StartDate:  testStart,
	})
	if err != nil {
		t.Fatalf("GenerateFixtures: %v", err)
	}
	return matches
}

func TestLeagueGeneratorCompleteness(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 7, 8, 11, 16} {
		teams := makeTeams(n)
		matches := generateLeague(t, teams, nil)

		if want := ExpectedRoundRobinMatches(n); len(matches) != want {
			t.Errorf("%d teams: got %d matches, want %d", n, len(matches), want)
			continue
		}

		pairs := make(map[pairKey]int)
		perTeam := make(map[int]int)
		for _, m := range matches {
			if m.HomeTeamID == m.AwayTeamID {
				t.Errorf("%d teams: team %d paired against itself", n, m.HomeTeamID)
			}
			pairs[newPairKey(m.HomeTeamID, m.AwayTeamID)]++
			perTeam[m.HomeTeamID]++
			perTeam[m.AwayTeamID]++
		}
		for key, count := range pairs {
			if count != 1 {
				t.Errorf("%d teams: pair %v scheduled %d times", n, key, count)
			}
		}
		for _, team := range teams {
			if perTeam[team.ID] != n-1 {
				t.Errorf("%d teams: team %d has %d fixtures, want %d", n, team.ID, perTeam[team.ID], n-1)
			}
		}
	}
}

// Round-robin scheduling must give every team at most one match per
// round, with rounds on consecutive days from the start date.
func TestLeagueGeneratorRounds(t *testing.T) {
	matches := generateLeague(t, makeTeams(6), nil)

	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		if m.Stage.Kind != models.StageLeague {
			t.Fatalf("match tagged %+v, want league stage", m.Stage)
		}
		byRound[m.Stage.Round] = append(byRound[m.Stage.Round], m)
	}
	if len(byRound) != 5 {
		t.Fatalf("got %d rounds for 6 teams, want 5", len(byRound))
	}

	for round, roundMatches := range byRound {
		teamsInRound := make(map[int]bool)
		for _, m := range roundMatches {
			if teamsInRound[m.HomeTeamID] || teamsInRound[m.AwayTeamID] {
				t.Errorf("round %d: a team plays twice", round)
			}
			teamsInRound[m.HomeTeamID] = true
			teamsInRound[m.AwayTeamID] = true

			wantKickoff := testStart.AddDate(0, 0, round-1)
			if !m.KickoffAt.Equal(wantKickoff) {
				t.Errorf("round %d kickoff %v, want %v", round, m.KickoffAt, wantKickoff)
			}
		}
	}
}

func TestLeagueGeneratorIdempotent(t *testing.T) {
	teams := makeTeams(5)
	first := generateLeague(t, teams, nil)

	again := generateLeague(t, teams, first)
	if again != nil {
		t.Errorf("second generation created %d matches, want none", len(again))
	}
}

// Removing matches and regenerating must create exactly the missing
// pairs and nothing else.
func TestLeagueGeneratorTopUp(t *testing.T) {
	teams := makeTeams(6)
	full := generateLeague(t, teams, nil)

	partial := full[:len(full)-4]
	missing := generateLeague(t, teams, partial)
	if len(missing) != 4 {
		t.Fatalf("top-up created %d matches, want 4", len(missing))
	}

	pairs := existingPairSet(partial)
	for _, m := range missing {
		key := newPairKey(m.HomeTeamID, m.AwayTeamID)
		if pairs[key] {
			t.Errorf("top-up recreated existing pair %v", key)
		}
		pairs[key] = true
	}
	if len(pairs) != ExpectedRoundRobinMatches(len(teams)) {
		t.Errorf("after top-up %d pairs, want %d", len(pairs), ExpectedRoundRobinMatches(len(teams)))
	}
}

func TestLeagueGeneratorTooFewTeams(t *testing.T) {
	_, err := NewLeagueGenerator().GenerateFixtures(context.Background(), GenerateParams{
		Tournament: leagueTournament(1),
		Teams:      makeTeams(1),
		StartDate:  testStart,
	})
	if err != ErrNotEnoughTeams {
		t.Errorf("got %v, want ErrNotEnoughTeams", err)
	}
}

func TestGenerateGroupRoundRobin(t *testing.T) {
	group := Group{Name: "Group A", Teams: makeTeams(4)}

	matches, err := GenerateGroupRoundRobin(1, group, nil, testStart, 1)
	if err != nil {
		t.Fatalf("GenerateGroupRoundRobin: %v", err)
	}
	if len(matches) != 6 {
		t.Fatalf("got %d matches, want 6", len(matches))
	}
	for _, m := range matches {
		if m.Stage.Kind != models.StageGroup || m.Stage.Group != "Group A" {
			t.Errorf("match tagged %+v, want Group A group stage", m.Stage)
		}
		if m.Stage.Round < 1 || m.Stage.Round > 3 {
			t.Errorf("round %d out of range for 4 teams", m.Stage.Round)
		}
	}

	report := ValidateGroupFixtures(group, matches)
	if !report.Valid {
		t.Errorf("generated group invalid: %v", report.Problems)
	}
}

func TestGenerateGroupRoundRobinTopUp(t *testing.T) {
	group := Group{Name: "Group B", Teams: makeTeams(5)}

	full, err := GenerateGroupRoundRobin(1, group, nil, testStart, 1)
	if err != nil {
		t.Fatalf("GenerateGroupRoundRobin: %v", err)
	}

	partial := full[:7]
	missing, err := GenerateGroupRoundRobin(1, group, partial, testStart, 1)
	if err != nil {
		t.Fatalf("top-up: %v", err)
	}
	if got := len(partial) + len(missing); got != ExpectedRoundRobinMatches(5) {
		t.Fatalf("after top-up %d matches, want %d", got, ExpectedRoundRobinMatches(5))
	}

	all := append(append([]*models.Match{}, partial...), missing...)
	report := ValidateGroupFixtures(group, all)
	if !report.Valid {
		t.Errorf("topped-up group invalid: %v", report.Problems)
	}
}

func TestGenerateGroupRoundRobinComplete(t *testing.T) {
	group := Group{Name: "Group A", Teams: makeTeams(4)}
	full, err := GenerateGroupRoundRobin(1, group, nil, testStart, 1)
	if err != nil {
		t.Fatalf("GenerateGroupRoundRobin: %v", err)
	}

	again, err := GenerateGroupRoundRobin(1, group, full, testStart, 1)
	if err != nil {
		t.Fatalf("regeneration: %v", err)
	}
	if again != nil {
		t.Errorf("regeneration created %d matches, want none", len(again))
	}
}

func TestGroupKnockoutGeneratorCreatesGroupStageOnly(t *testing.T) {
	teams := makeTeams(8)
	matches, err := NewGroupKnockoutGenerator().GenerateFixtures(context.Background(), GenerateParams{
		Tournament: &models.Tournament{ID: 1, Format: models.FormatCombination},
		Teams:      teams,
		StartDate:  testStart,
	})
	if err != nil {
		t.Fatalf("GenerateFixtures: %v", err)
	}

	// 8 teams split into two groups of 4: 6 matches each.
	if len(matches) != 12 {
		t.Fatalf("got %d matches, want 12", len(matches))
	}
	byGroup := make(map[string]int)
	for _, m := range matches {
		if !m.Stage.IsGroup() {
			t.Errorf("match tagged %+v, want group stage", m.Stage)
		}
		byGroup[m.Stage.Group]++
	}
	if byGroup["Group A"] != 6 || byGroup["Group B"] != 6 {
		t.Errorf("group match counts = %v, want 6 each", byGroup)
	}
}
