package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
)

// GoalInput is one goal in a submitted result, optionally with the
// assisting player.
type GoalInput struct {
	PlayerID       int  `json:"player_id"`
	TeamID         int  `json:"team_id"`
	Minute         int  `json:"minute"`
	AssistPlayerID *int `json:"assist_player_id,omitempty"`
}

// ScoreInput is a full result submission. Submitting against an
// already-finished match is a correction: the previous result's
// aggregate effects are reversed before the new ones apply.
type ScoreInput struct {
	HomeScore     int         `json:"home_score"`
	AwayScore     int         `json:"away_score"`
	HomePenalties *int        `json:"home_penalties,omitempty"`
	AwayPenalties *int        `json:"away_penalties,omitempty"`
	Goals         []GoalInput `json:"goals,omitempty"`
}

// ResultNotifier receives finished-match events; the live update hub
// implements it.
type ResultNotifier interface {
	NotifyMatchResult(match *models.Match)
}

type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
	SubmitScore(ctx context.Context, matchID int, input ScoreInput) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	progression    ProgressionService
	notifier       ResultNotifier
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	progression ProgressionService,
	notifier ResultNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		progression:    progression,
		notifier:       notifier,
		logger:         ensureLogger(logger),
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	s.populateTeams(ctx, match)
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, filter)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		s.populateTeams(ctx, m)
	}
	return matches, nil
}

// SubmitScore records a match result. Team and player aggregates move
// by deltas: when the match was already finished, the delta derived
// from its previous state is applied negated first, so corrections
// leave the counters exactly as if the old result never happened.
// Bracket progression runs after commit and is absorbed on error; the
// score entry itself must not fail because advancement did.
func (s *matchService) SubmitScore(ctx context.Context, matchID int, input ScoreInput) (*models.Match, error) {
	if err := validateScoreInput(input); err != nil {
		return nil, err
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	homePlayers, err := s.playerRepo.ListByTeam(ctx, match.HomeTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load home squad: %w", err)
	}
	awayPlayers, err := s.playerRepo.ListByTeam(ctx, match.AwayTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load away squad: %w", err)
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		// Reverse the previous result before applying the new one.
		if match.Finished() {
			if revErr := s.reverseResult(ctx, tx, match, homePlayers, awayPlayers); revErr != nil {
				return revErr
			}
		}

		match.HomeScore = input.HomeScore
		match.AwayScore = input.AwayScore
		match.HomePenalties = input.HomePenalties
		match.AwayPenalties = input.AwayPenalties
		match.Status = models.MatchFinished

		if updErr := s.matchRepo.UpdateResult(ctx, tx, match); updErr != nil {
			return fmt.Errorf("failed to update match %d: %w", matchID, updErr)
		}

		scorers, assists, evErr := s.insertEvents(ctx, tx, match, input.Goals)
		if evErr != nil {
			return evErr
		}

		return s.applyResult(ctx, tx, match, scorers, assists, homePlayers, awayPlayers)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyMatchResult(match)
	}
	s.progression.OnMatchFinished(ctx, tournament, match)

	s.populateTeams(ctx, match)
	return match, nil
}

func validateScoreInput(input ScoreInput) error {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return ErrScoreInvalid
	}
	if (input.HomePenalties == nil) != (input.AwayPenalties == nil) {
		return ErrPenaltiesInvalid
	}
	if input.HomePenalties != nil {
		if *input.HomePenalties < 0 || *input.AwayPenalties < 0 || *input.HomePenalties == *input.AwayPenalties {
			return ErrPenaltiesInvalid
		}
	}
	return nil
}

// reverseResult negates the aggregate effects of the match's currently
// stored result and clears its goal events.
func (s *matchService) reverseResult(ctx context.Context, tx *sql.Tx, match *models.Match, homePlayers, awayPlayers []*models.Player) error {
	scorers, err := s.matchRepo.ListScorersByMatch(ctx, tx, match.ID)
	if err != nil {
		return fmt.Errorf("failed to load previous scorers: %w", err)
	}
	assists, err := s.matchRepo.ListAssistsByMatch(ctx, tx, match.ID)
	if err != nil {
		return fmt.Errorf("failed to load previous assists: %w", err)
	}

	for _, teamID := range []int{match.HomeTeamID, match.AwayTeamID} {
		delta := models.ResultDeltaFor(match, teamID)
		if err := s.teamRepo.ApplyDelta(ctx, tx, teamID, delta.Neg()); err != nil {
			return err
		}
	}

	for playerID, delta := range playerDeltas(match, scorers, assists, homePlayers, awayPlayers) {
		if err := s.playerRepo.ApplyDelta(ctx, tx, playerID, delta.Neg()); err != nil {
			return err
		}
	}

	if err := s.matchRepo.DeleteMatchEvents(ctx, tx, match.ID); err != nil {
		return fmt.Errorf("failed to clear previous match events: %w", err)
	}
	return nil
}

// applyResult applies the match's current result to team and player
// aggregates.
func (s *matchService) applyResult(ctx context.Context, tx *sql.Tx, match *models.Match, scorers []*models.MatchScorer, assists []*models.MatchAssist, homePlayers, awayPlayers []*models.Player) error {
	for _, teamID := range []int{match.HomeTeamID, match.AwayTeamID} {
		if err := s.teamRepo.ApplyDelta(ctx, tx, teamID, models.ResultDeltaFor(match, teamID)); err != nil {
			return err
		}
	}
	for playerID, delta := range playerDeltas(match, scorers, assists, homePlayers, awayPlayers) {
		if err := s.playerRepo.ApplyDelta(ctx, tx, playerID, delta); err != nil {
			return err
		}
	}
	return nil
}

func (s *matchService) insertEvents(ctx context.Context, tx *sql.Tx, match *models.Match, goals []GoalInput) ([]*models.MatchScorer, []*models.MatchAssist, error) {
	var scorers []*models.MatchScorer
	var assists []*models.MatchAssist
	for _, goal := range goals {
		scorer := &models.MatchScorer{
			MatchID:  match.ID,
			PlayerID: goal.PlayerID,
			TeamID:   goal.TeamID,
			Minute:   goal.Minute,
		}
		if err := s.matchRepo.InsertScorer(ctx, tx, scorer); err != nil {
			return nil, nil, fmt.Errorf("failed to record goal: %w", err)
		}
		scorers = append(scorers, scorer)

		if goal.AssistPlayerID != nil {
			assist := &models.MatchAssist{
				GoalID:   scorer.ID,
				MatchID:  match.ID,
				PlayerID: *goal.AssistPlayerID,
				TeamID:   goal.TeamID,
			}
			if err := s.matchRepo.InsertAssist(ctx, tx, assist); err != nil {
				return nil, nil, fmt.Errorf("failed to record assist: %w", err)
			}
			assists = append(assists, assist)
		}
	}
	return scorers, assists, nil
}

// playerDeltas derives every player's aggregate delta for a match
// result: a goal or assist per event, one appearance per involved
// player, and a clean sheet for the first listed goalkeeper of a side
// that conceded nothing. The derivation is a pure function of the match
// row and its events, so the same result always produces the same
// deltas and a correction can negate them exactly.
func playerDeltas(match *models.Match, scorers []*models.MatchScorer, assists []*models.MatchAssist, homePlayers, awayPlayers []*models.Player) map[int]models.PlayerDelta {
	deltas := make(map[int]models.PlayerDelta)
	for _, sc := range scorers {
		d := deltas[sc.PlayerID]
		d.Goals++
		deltas[sc.PlayerID] = d
	}
	for _, as := range assists {
		d := deltas[as.PlayerID]
		d.Assists++
		deltas[as.PlayerID] = d
	}
	for id, d := range deltas {
		d.Appearances = 1
		deltas[id] = d
	}

	if match.AwayScore == 0 {
		if gk := firstGoalkeeper(homePlayers); gk != nil {
			d := deltas[gk.ID]
			d.CleanSheets = 1
			d.Appearances = 1
			deltas[gk.ID] = d
		}
	}
	if match.HomeScore == 0 {
		if gk := firstGoalkeeper(awayPlayers); gk != nil {
			d := deltas[gk.ID]
			d.CleanSheets = 1
			d.Appearances = 1
			deltas[gk.ID] = d
		}
	}
	return deltas
}

func firstGoalkeeper(players []*models.Player) *models.Player {
	for _, p := range players {
		if p.Position == models.PositionGoalkeeper {
			return p
		}
	}
	return nil
}

func (s *matchService) populateTeams(ctx context.Context, match *models.Match) {
	teams, err := s.teamRepo.GetByIDs(ctx, []int{match.HomeTeamID, match.AwayTeamID})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to populate match teams",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return
	}
	for _, t := range teams {
		switch t.ID {
		case match.HomeTeamID:
			match.HomeTeam = t
		case match.AwayTeamID:
			match.AwayTeam = t
		}
	}
}
