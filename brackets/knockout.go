package brackets

import (
	"context"
	"fmt"
	"time"

	"github.com/pitchside/tournament-engine/models"
)

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// RoundLabelForTeams names a knockout round from the number of teams
// entering it: 16 teams play the Round of 16, 8 the Quarter-Finals, 4
// the Semi-Finals and 2 the Final.
func RoundLabelForTeams(numTeams int) string {
	switch {
	case numTeams >= 16:
		return models.RoundOf16Label
	case numTeams >= 8:
		return models.QuarterFinalsLabel
	case numTeams >= 4:
		return models.SemiFinalsLabel
	default:
		return models.FinalLabel
	}
}

// PairAdjacent builds knockout matches by pairing teams in input order:
// (0,1), (2,3), ... Every match shares the given kickoff and stage.
func PairAdjacent(tournamentID int, teams []*models.Team, stage models.Stage, kickoff time.Time) []*models.Match {
	matches := make([]*models.Match, 0, len(teams)/2)
	for i := 0; i+1 < len(teams); i += 2 {
		matches = append(matches, &models.Match{
			TournamentID: tournamentID,
			HomeTeamID:   teams[i].ID,
			AwayTeamID:   teams[i+1].ID,
			HomeTeam:     teams[i],
			AwayTeam:     teams[i+1],
			Stage:        stage,
			KickoffAt:    kickoff,
			Status:       models.MatchScheduled,
		})
	}
	return matches
}

type KnockoutGenerator struct{}

func NewKnockoutGenerator() FixtureGenerator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) GetName() string {
	return "Knockout"
}

// GenerateFixtures creates Round 1 of a single-elimination bracket.
// Later rounds are created dynamically as results come in, so the full
// bracket is never pre-generated. The team count must be a power of two;
// byes are a configuration error here, not something to paper over.
func (g *KnockoutGenerator) GenerateFixtures(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	n := len(params.Teams)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}
	if !isPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: got %d teams", ErrTeamCountNotPowerOfTwo, n)
	}
	if len(params.Existing) > 0 {
		return nil, nil
	}

	matches := PairAdjacent(params.Tournament.ID, params.Teams, models.KnockoutStage("Round 1"), params.StartDate)
	if len(matches) != n/2 {
		return nil, fmt.Errorf("knockout first round produced %d matches for %d teams, want %d", len(matches), n, n/2)
	}
	return matches, nil
}
