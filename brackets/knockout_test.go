package brackets

import (
	"context"
	"errors"
	"testing"

	"github.com/pitchside/tournament-engine/models"
)

func TestRoundLabelForTeams(t *testing.T) {
	tests := []struct {
		teams int
		want  string
	}{
		{2, models.FinalLabel},
		{3, models.FinalLabel},
		{4, models.SemiFinalsLabel},
		{6, models.SemiFinalsLabel},
		{8, models.QuarterFinalsLabel},
		{12, models.QuarterFinalsLabel},
		{16, models.RoundOf16Label},
		{32, models.RoundOf16Label},
	}
	for _, tc := range tests {
		if got := RoundLabelForTeams(tc.teams); got != tc.want {
			t.Errorf("RoundLabelForTeams(%d) = %q, want %q", tc.teams, got, tc.want)
		}
	}
}

func TestPairAdjacent(t *testing.T) {
	teams := makeTeams(6)
	stage := models.KnockoutStage("Semi-Finals")
	matches := PairAdjacent(9, teams, stage, testStart)

	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	for i, m := range matches {
		if m.HomeTeamID != teams[2*i].ID || m.AwayTeamID != teams[2*i+1].ID {
			t.Errorf("match %d pairs %d vs %d, want %d vs %d",
				i, m.HomeTeamID, m.AwayTeamID, teams[2*i].ID, teams[2*i+1].ID)
		}
		if m.TournamentID != 9 || m.Stage != stage || m.Status != models.MatchScheduled {
			t.Errorf("match %d fields = %+v", i, m)
		}
		if !m.KickoffAt.Equal(testStart) {
			t.Errorf("match %d kickoff %v, want %v", i, m.KickoffAt, testStart)
		}
	}
}

func TestKnockoutGenerator(t *testing.T) {
	gen := NewKnockoutGenerator()
	tournament := &models.Tournament{ID: 3, Format: models.FormatKnockout}

	matches, err := gen.GenerateFixtures(context.Background(), GenerateParams{
		Tournament: tournament,
		Teams:      makeTeams(8),
		StartDate:  testStart,
	})
	if err != nil {
		t.Fatalf("GenerateFixtures: %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want 4", len(matches))
	}
	for _, m := range matches {
		if m.Stage != models.KnockoutStage("Round 1") {
			t.Errorf("stage = %+v, want knockout Round 1", m.Stage)
		}
	}
}

func TestKnockoutGeneratorRejectsOddCounts(t *testing.T) {
	gen := NewKnockoutGenerator()
	for _, n := range []int{3, 5, 6, 7, 12} {
		_, err := gen.GenerateFixtures(context.Background(), GenerateParams{
			Tournament: &models.Tournament{ID: 1, Format: models.FormatKnockout},
			Teams:      makeTeams(n),
			StartDate:  testStart,
		})
		if !errors.Is(err, ErrTeamCountNotPowerOfTwo) {
			t.Errorf("%d teams: got %v, want ErrTeamCountNotPowerOfTwo", n, err)
		}
	}

	_, err := gen.GenerateFixtures(context.Background(), GenerateParams{
		Tournament: &models.Tournament{ID: 1, Format: models.FormatKnockout},
		Teams:      makeTeams(1),
		StartDate:  testStart,
	})
	if !errors.Is(err, ErrNotEnoughTeams) {
		t.Errorf("1 team: got %v, want ErrNotEnoughTeams", err)
	}
}

func TestKnockoutGeneratorIdempotent(t *testing.T) {
	gen := NewKnockoutGenerator()
	tournament := &models.Tournament{ID: 3, Format: models.FormatKnockout}
	teams := makeTeams(4)

	first, err := gen.GenerateFixtures(context.Background(), GenerateParams{
		Tournament: tournament, Teams: teams, StartDate: testStart,
	})
	if err != nil {
		t.Fatalf("GenerateFixtures: %v", err)
	}

	again, err := gen.GenerateFixtures(context.Background(), GenerateParams{
		Tournament: tournament, Teams: teams, Existing: first, StartDate: testStart,
	})
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}
	if again != nil {
		t.Errorf("second generation created %d matches, want none", len(again))
	}
}

func TestGeneratorForFormat(t *testing.T) {
	combinationB := `{"combination_type":"combinationB"}`
	tests := []struct {
		name       string
		tournament *models.Tournament
		want       string
	}{
		{"league", &models.Tournament{Format: models.FormatLeague}, "League"},
		{"knockout", &models.Tournament{Format: models.FormatKnockout}, "Knockout"},
		{"challenge", &models.Tournament{Format: models.FormatChallenge}, "League"},
		{"combinationA default", &models.Tournament{Format: models.FormatCombination}, "League"},
		{"combinationB", &models.Tournament{Format: models.FormatCombination, StructureJSON: &combinationB}, "GroupKnockout"},
	}
	for _, tc := range tests {
		if got := GeneratorForFormat(tc.tournament).GetName(); got != tc.want {
			t.Errorf("%s: got generator %q, want %q", tc.name, got, tc.want)
		}
	}
}
