package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
	"github.com/pitchside/tournament-engine/retry"
)

var ErrNoScheduledMatches = errors.New("tournament has no scheduled matches to simulate")

// SimulateRoundResult summarizes one simulated round. A round is the
// set of scheduled matches sharing the earliest kickoff day, which can
// span several groups; Stages lists every stage that day touched.
type SimulateRoundResult struct {
	Day              time.Time     `json:"day"`
	Stages           []string      `json:"stages"`
	MatchesSimulated int           `json:"matches_simulated"`
	Failed           []FailedMatch `json:"failed_matches,omitempty"`
}

type FailedMatch struct {
	MatchID int    `json:"match_id"`
	Error   string `json:"error"`
}

type SimulationService interface {
	SimulateMatch(ctx context.Context, matchID int) (*models.Match, error)
	// SimulateRound plays out every scheduled match of the tournament's
	// next round. Matches fail independently: a persistent storage error
	// on one match is reported per match and does not stop the others.
	SimulateRound(ctx context.Context, tournamentID int) (*SimulateRoundResult, error)
}

type simulationService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	matches    MatchService
	policy     retry.Policy
	rng        *rand.Rand
	logger     *slog.Logger
}

func NewSimulationService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	matches MatchService,
	policy retry.Policy,
	seed int64,
	logger *slog.Logger,
) SimulationService {
	return &simulationService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		matches:    matches,
		policy:     policy,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     ensureLogger(logger),
	}
}

func (s *simulationService) SimulateMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.simulate(ctx, match)
}

func (s *simulationService) SimulateRound(ctx context.Context, tournamentID int) (*SimulateRoundResult, error) {
	scheduled := models.MatchScheduled
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, repositories.MatchFilter{Status: &scheduled})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNoScheduledMatches
	}

	// The list comes back ordered by kickoff.
	roundDay, round := earliestRound(matches)
	result := &SimulateRoundResult{Day: roundDay, Stages: roundStages(round)}

	for _, match := range round {
		if _, simErr := s.simulate(ctx, match); simErr != nil {
			s.logger.WarnContext(ctx, "match simulation failed",
				slog.Int("match_id", match.ID), slog.Any("error", simErr))
			result.Failed = append(result.Failed, FailedMatch{MatchID: match.ID, Error: simErr.Error()})
			continue
		}
		result.MatchesSimulated++
	}
	return result, nil
}

// simulate invents a plausible result and submits it through the
// regular score-entry path, so aggregates and bracket progression
// behave exactly as with a manually entered score. Transient storage
// contention is retried per match with bounded backoff.
func (s *simulationService) simulate(ctx context.Context, match *models.Match) (*models.Match, error) {
	homePlayers, err := s.playerRepo.ListByTeam(ctx, match.HomeTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load home squad: %w", err)
	}
	awayPlayers, err := s.playerRepo.ListByTeam(ctx, match.AwayTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load away squad: %w", err)
	}
	if len(homePlayers) == 0 || len(awayPlayers) == 0 {
		return nil, fmt.Errorf("%w: both teams need players before simulation", ErrValidationFailed)
	}

	input := s.inventResult(match, homePlayers, awayPlayers)

	var submitted *models.Match
	err = s.policy.Do(ctx, func() error {
		var submitErr error
		submitted, submitErr = s.matches.SubmitScore(ctx, match.ID, input)
		return submitErr
	}, repositories.IsTransient)
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

func (s *simulationService) inventResult(match *models.Match, homePlayers, awayPlayers []*models.Player) ScoreInput {
	homeScore, awayScore := s.inventScore()

	input := ScoreInput{HomeScore: homeScore, AwayScore: awayScore}

	// Knockout matches cannot end level; a drawn score gets a penalty
	// shootout with a forced winner.
	if match.Stage.IsKnockout() && homeScore == awayScore {
		home := 3 + s.rng.Intn(3)
		away := 3 + s.rng.Intn(3)
		for home == away {
			if s.rng.Intn(2) == 0 {
				home++
			} else {
				away++
			}
		}
		input.HomePenalties = &home
		input.AwayPenalties = &away
	}

	input.Goals = append(input.Goals, s.inventGoals(homeScore, match.HomeTeamID, homePlayers)...)
	input.Goals = append(input.Goals, s.inventGoals(awayScore, match.AwayTeamID, awayPlayers)...)
	return input
}

// inventScore draws from a distribution resembling amateur football:
// mostly 0-3 goals a side, sometimes more, with a mild home edge and an
// occasional goalless draw.
func (s *simulationService) inventScore() (int, int) {
	var home, away int
	if s.rng.Float64() < 0.7 {
		home = weightedPick(s.rng, []int{0, 1, 2, 3}, []int{15, 30, 35, 20})
		away = weightedPick(s.rng, []int{0, 1, 2, 3}, []int{15, 30, 35, 20})
	} else {
		home = weightedPick(s.rng, []int{2, 3, 4, 5}, []int{30, 40, 20, 10})
		away = weightedPick(s.rng, []int{2, 3, 4, 5}, []int{30, 40, 20, 10})
	}

	if s.rng.Float64() < 0.7 {
		if s.rng.Float64() < 0.4 && home < 6 {
			home++
		}
	} else if s.rng.Float64() < 0.3 && away < 6 {
		away++
	}

	if s.rng.Float64() < 0.3 {
		return 0, 0
	}
	return home, away
}

// inventGoals picks scorers weighted toward forwards and midfielders,
// with a 60% chance of an assist from a different teammate.
func (s *simulationService) inventGoals(goals, teamID int, players []*models.Player) []GoalInput {
	if goals == 0 {
		return nil
	}

	var attackers []*models.Player
	for _, p := range players {
		if p.Position == models.PositionForward || p.Position == models.PositionMidfielder {
			attackers = append(attackers, p)
		}
	}
	if len(attackers) == 0 {
		attackers = players
	}

	usedMinutes := make(map[int]bool)
	out := make([]GoalInput, 0, goals)
	for i := 0; i < goals; i++ {
		scorer := attackers[s.rng.Intn(len(attackers))]

		minute := 1 + s.rng.Intn(90)
		for attempts := 0; usedMinutes[minute] && attempts < 90; attempts++ {
			minute = 1 + s.rng.Intn(90)
		}
		usedMinutes[minute] = true

		goal := GoalInput{PlayerID: scorer.ID, TeamID: teamID, Minute: minute}
		if s.rng.Float64() < 0.6 {
			var teammates []*models.Player
			for _, p := range players {
				if p.ID != scorer.ID {
					teammates = append(teammates, p)
				}
			}
			if len(teammates) > 0 {
				assister := teammates[s.rng.Intn(len(teammates))]
				goal.AssistPlayerID = &assister.ID
			}
		}
		out = append(out, goal)
	}
	return out
}

// earliestRound selects the next round to play: the prefix of the
// kickoff-ordered match list sharing the earliest kickoff day. Group
// rounds of different groups share days, so one round can span groups.
func earliestRound(matches []*models.Match) (time.Time, []*models.Match) {
	day := matches[0].KickoffAt.Truncate(24 * time.Hour)
	round := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if !m.KickoffAt.Truncate(24 * time.Hour).Equal(day) {
			break
		}
		round = append(round, m)
	}
	return day, round
}

// roundStages lists the distinct stage labels of a round, in match
// order.
func roundStages(matches []*models.Match) []string {
	seen := make(map[string]bool, len(matches))
	stages := make([]string, 0, 1)
	for _, m := range matches {
		label := m.Stage.String()
		if seen[label] {
			continue
		}
		seen[label] = true
		stages = append(stages, label)
	}
	return stages
}

func weightedPick(rng *rand.Rand, values, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := rng.Intn(total)
	for i, w := range weights {
		if roll < w {
			return values[i]
		}
		roll -= w
	}
	return values[len(values)-1]
}
