package brackets

import (
	"context"
	"errors"
	"time"

	"github.com/pitchside/tournament-engine/models"
)

var (
	ErrNotEnoughTeams         = errors.New("not enough teams to generate fixtures (minimum 2 required)")
	ErrTeamCountNotPowerOfTwo = errors.New("knockout tournaments require a power-of-two team count (4, 8, 16, 32, ...)")
)

// GenerateParams carries everything a generator needs. Teams are in
// persisted seed order; Existing holds the tournament's already-created
// matches so generation stays idempotent.
type GenerateParams struct {
	Tournament *models.Tournament
	Teams      []*models.Team
	Existing   []*models.Match
	StartDate  time.Time
}

// FixtureGenerator produces the initial fixture list for one tournament
// format. Generators return only matches that do not exist yet.
type FixtureGenerator interface {
	GenerateFixtures(ctx context.Context, params GenerateParams) ([]*models.Match, error)

	GetName() string
}

// GeneratorForFormat picks the generator for a tournament. CombinationA
// starts as a plain league (its knockout stage is created later from the
// league table); challenge tournaments schedule like a league.
func GeneratorForFormat(t *models.Tournament) FixtureGenerator {
	switch t.Format {
	case models.FormatKnockout:
		return NewKnockoutGenerator()
	case models.FormatCombination:
		if t.CombinationType() == models.CombinationB {
			return NewGroupKnockoutGenerator()
		}
		return NewLeagueGenerator()
	default:
		return NewLeagueGenerator()
	}
}
