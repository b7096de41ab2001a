package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pitchside/tournament-engine/brackets"
	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
)

// AdvanceResult reports what happened when a round was examined for
// advancement. A skipped advancement is a normal outcome, not an error.
type AdvanceResult struct {
	Advanced     bool   `json:"advanced"`
	CreatedRound string `json:"created_round,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

type ProgressionService interface {
	// OnMatchFinished runs every progression side effect of a finished
	// match: knockout advancement, stage transitions and completion
	// detection. Errors are absorbed and logged; score entry must never
	// fail because a downstream bracket operation did.
	OnMatchFinished(ctx context.Context, tournament *models.Tournament, match *models.Match)

	AdvanceRoundIfComplete(ctx context.Context, tournament *models.Tournament, roundLabel string) (AdvanceResult, error)
	TransitionGroupsToKnockout(ctx context.Context, tournament *models.Tournament) (bool, error)
	TransitionLeagueToKnockout(ctx context.Context, tournament *models.Tournament) (bool, error)
	CheckCompletion(ctx context.Context, tournament *models.Tournament, match *models.Match) (bool, error)
}

// ProgressionEvent describes a bracket change worth broadcasting.
type ProgressionEvent struct {
	Type         string
	TournamentID int
	RoundLabel   string
}

// ProgressionNotifier receives bracket change events; the live update
// hub implements it.
type ProgressionNotifier interface {
	NotifyProgression(event ProgressionEvent)
}

type progressionService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
	matchRepo        repositories.MatchRepository
	notifier         ProgressionNotifier
	logger           *slog.Logger
}

func NewProgressionService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	notifier ProgressionNotifier,
	logger *slog.Logger,
) ProgressionService {
	return &progressionService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
		matchRepo:        matchRepo,
		notifier:         notifier,
		logger:           ensureLogger(logger),
	}
}

func (s *progressionService) notify(event ProgressionEvent) {
	if s.notifier != nil {
		s.notifier.NotifyProgression(event)
	}
}

func (s *progressionService) OnMatchFinished(ctx context.Context, tournament *models.Tournament, match *models.Match) {
	log := s.logger.With(
		slog.Int("tournament_id", tournament.ID),
		slog.Int("match_id", match.ID),
		slog.String("stage", match.Stage.String()))

	switch {
	case match.Stage.IsKnockout():
		result, err := s.AdvanceRoundIfComplete(ctx, tournament, match.Stage.Label)
		if err != nil {
			log.ErrorContext(ctx, "knockout advancement failed", slog.Any("error", err))
		} else if result.Advanced {
			log.InfoContext(ctx, "knockout round created", slog.String("round", result.CreatedRound))
		}

	case match.Stage.IsGroup() && tournament.IsGroupKnockout():
		started, err := s.TransitionGroupsToKnockout(ctx, tournament)
		if err != nil {
			log.ErrorContext(ctx, "group to knockout transition failed", slog.Any("error", err))
		} else if started {
			log.InfoContext(ctx, "knockout stage generated from groups")
		}

	case match.Stage.Kind == models.StageLeague &&
		tournament.Format == models.FormatCombination &&
		tournament.CombinationType() == models.CombinationA:
		started, err := s.TransitionLeagueToKnockout(ctx, tournament)
		if err != nil {
			log.ErrorContext(ctx, "league to knockout transition failed", slog.Any("error", err))
		} else if started {
			log.InfoContext(ctx, "knockout stage generated from league table")
		}
	}

	completed, err := s.CheckCompletion(ctx, tournament, match)
	if err != nil {
		log.ErrorContext(ctx, "completion check failed", slog.Any("error", err))
	} else if completed {
		log.InfoContext(ctx, "tournament completed")
	}
}

// AdvanceRoundIfComplete inspects one knockout round and, when every
// match is finished and at least two winners are determinable, creates
// the next round. The existing-round check runs again inside the
// transaction: two concurrent completions of a round's last matches
// must not both create the successor.
func (s *progressionService) AdvanceRoundIfComplete(ctx context.Context, tournament *models.Tournament, roundLabel string) (AdvanceResult, error) {
	knockout := models.StageKnockout
	roundMatches, err := s.matchRepo.ListByTournament(ctx, nil, tournament.ID, repositories.MatchFilter{
		StageKind:  &knockout,
		StageLabel: &roundLabel,
	})
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("failed to list round %q: %w", roundLabel, err)
	}
	plan := planNextRound(roundMatches)
	for _, matchID := range plan.unresolved {
		// Knockout draws must carry a penalty decision; a match without
		// one contributes no winner and is left for manual correction.
		s.logger.WarnContext(ctx, "knockout match has no determinable winner",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("match_id", matchID),
			slog.String("round", roundLabel))
	}
	if plan.reason != "" {
		return AdvanceResult{Reason: plan.reason}, nil
	}
	if plan.unpairedTeamID != 0 {
		s.logger.WarnContext(ctx, "odd winner count, last winner left without an opponent",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("team_id", plan.unpairedTeamID),
			slog.String("round", roundLabel))
	}

	nextLabel := plan.nextLabel
	winners, err := s.teamsInOrder(ctx, plan.winnerIDs)
	if err != nil {
		return AdvanceResult{}, err
	}

	kickoff := plan.kickoff
	advanced := false
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		existing, listErr := s.matchRepo.ListByTournament(ctx, tx, tournament.ID, repositories.MatchFilter{
			StageKind:  &knockout,
			StageLabel: &nextLabel,
		})
		if listErr != nil {
			return listErr
		}
		if len(existing) > 0 {
			return nil
		}

		next := brackets.PairAdjacent(tournament.ID, winners, models.KnockoutStage(nextLabel), kickoff)
		if createErr := s.matchRepo.CreateBatch(ctx, tx, next); createErr != nil {
			return fmt.Errorf("failed to create round %q: %w", nextLabel, createErr)
		}
		advanced = true
		return nil
	})
	if err != nil {
		return AdvanceResult{}, err
	}
	if !advanced {
		return AdvanceResult{Reason: "next round already exists"}, nil
	}

	s.notify(ProgressionEvent{Type: "ROUND_CREATED", TournamentID: tournament.ID, RoundLabel: nextLabel})
	return AdvanceResult{Advanced: true, CreatedRound: nextLabel}, nil
}

// TransitionGroupsToKnockout creates the knockout stage of a
// groups-into-knockout tournament once every group match has finished.
// The grouping is recomputed from the roster, so it reproduces the
// groups used at generation time; the top two of each group qualify and
// adjacent groups cross over: first of one against second of the other.
func (s *progressionService) TransitionGroupsToKnockout(ctx context.Context, tournament *models.Tournament) (bool, error) {
	groupKind := models.StageGroup
	groupMatches, err := s.matchRepo.ListByTournament(ctx, nil, tournament.ID, repositories.MatchFilter{StageKind: &groupKind})
	if err != nil {
		return false, fmt.Errorf("failed to list group matches: %w", err)
	}
	if len(groupMatches) == 0 {
		return false, nil
	}

	var latestKickoff time.Time
	for _, m := range groupMatches {
		if !m.Finished() {
			return false, nil
		}
		if m.KickoffAt.After(latestKickoff) {
			latestKickoff = m.KickoffAt
		}
	}

	teams, err := loadRoster(ctx, s.registrationRepo, s.teamRepo, tournament.ID)
	if err != nil {
		return false, err
	}

	// SplitIntoGroups assigns names in A, B, C order, so the tables come
	// back already sorted for adjacent cross-pairing.
	tables := brackets.ComputeGroupStandings(teams, groupMatches)

	qualifiers, err := crossoverQualifiers(tables)
	if err != nil {
		return false, err
	}
	if len(qualifiers) < 4 {
		return false, nil
	}

	return s.createKnockoutStage(ctx, tournament, qualifiers, latestKickoff.AddDate(0, 0, 1))
}

// roundPlan is the derived follow-up of one knockout round: the winner
// team ids in match order, the next round's label and kickoff day, the
// ids of finished matches whose winner could not be determined, and the
// team id of a winner left without an opponent when the count is odd.
// A non-empty reason means no round should be created.
type roundPlan struct {
	winnerIDs      []int
	nextLabel      string
	kickoff        time.Time
	unresolved     []int
	unpairedTeamID int
	reason         string
}

// planNextRound derives the successor of a knockout round from its
// matches alone. The round must be fully finished; unresolved draws are
// reported but excluded, and fewer than two resolved winners blocks
// advancement. The next round lands one day after the round's latest
// kickoff.
func planNextRound(matches []*models.Match) roundPlan {
	if len(matches) == 0 {
		return roundPlan{reason: "round has no matches"}
	}

	var plan roundPlan
	var latestKickoff time.Time
	for _, m := range matches {
		if !m.Finished() {
			return roundPlan{reason: "round incomplete"}
		}
		if m.KickoffAt.After(latestKickoff) {
			latestKickoff = m.KickoffAt
		}
		winnerID, ok := m.Winner()
		if !ok {
			plan.unresolved = append(plan.unresolved, m.ID)
			continue
		}
		plan.winnerIDs = append(plan.winnerIDs, winnerID)
	}

	if len(plan.winnerIDs) < 2 {
		plan.reason = "fewer than two winners"
		return plan
	}
	if len(plan.winnerIDs)%2 != 0 {
		plan.unpairedTeamID = plan.winnerIDs[len(plan.winnerIDs)-1]
	}

	plan.nextLabel = brackets.RoundLabelForTeams(len(plan.winnerIDs))
	plan.kickoff = latestKickoff.AddDate(0, 0, 1)
	return plan
}

// crossoverQualifiers takes the top two of each group and orders them so
// that adjacent pairing puts a group winner against the other group's
// runner-up: for groups G1 and G2 the knockout seeds are G1-1st vs
// G2-2nd and G2-1st vs G1-2nd.
func crossoverQualifiers(tables []brackets.GroupTable) ([]*models.Team, error) {
	var qualifiers []*models.Team
	for i := 0; i+1 < len(tables); i += 2 {
		g1, g2 := tables[i], tables[i+1]
		if len(g1.Table) < 2 || len(g2.Table) < 2 {
			return nil, fmt.Errorf("group %s or %s has fewer than two teams, cannot qualify", g1.Name, g2.Name)
		}
		qualifiers = append(qualifiers,
			g1.Table[0].Team, g2.Table[1].Team,
			g2.Table[0].Team, g1.Table[1].Team,
		)
	}
	return qualifiers, nil
}

// TransitionLeagueToKnockout starts the knockout stage of a
// league-into-knockout tournament: once every league match is finished,
// the top four of the table meet in the Semi-Finals, first against
// fourth and second against third.
func (s *progressionService) TransitionLeagueToKnockout(ctx context.Context, tournament *models.Tournament) (bool, error) {
	leagueKind := models.StageLeague
	leagueMatches, err := s.matchRepo.ListByTournament(ctx, nil, tournament.ID, repositories.MatchFilter{StageKind: &leagueKind})
	if err != nil {
		return false, fmt.Errorf("failed to list league matches: %w", err)
	}
	if len(leagueMatches) == 0 {
		return false, nil
	}

	var latestKickoff time.Time
	for _, m := range leagueMatches {
		if !m.Finished() {
			return false, nil
		}
		if m.KickoffAt.After(latestKickoff) {
			latestKickoff = m.KickoffAt
		}
	}

	teams, err := loadRoster(ctx, s.registrationRepo, s.teamRepo, tournament.ID)
	if err != nil {
		return false, err
	}
	if len(teams) < 4 {
		return false, nil
	}

	table := brackets.ComputeStandings(teams, leagueMatches)
	qualifiers := []*models.Team{
		table[0].Team, table[3].Team,
		table[1].Team, table[2].Team,
	}

	return s.createKnockoutStage(ctx, tournament, qualifiers, latestKickoff.AddDate(0, 0, 1))
}

func (s *progressionService) createKnockoutStage(ctx context.Context, tournament *models.Tournament, qualifiers []*models.Team, kickoff time.Time) (bool, error) {
	label := brackets.RoundLabelForTeams(len(qualifiers))
	knockout := models.StageKnockout

	created := false
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		existing, listErr := s.matchRepo.ListByTournament(ctx, tx, tournament.ID, repositories.MatchFilter{StageKind: &knockout})
		if listErr != nil {
			return listErr
		}
		if len(existing) > 0 {
			return nil
		}

		matches := brackets.PairAdjacent(tournament.ID, qualifiers, models.KnockoutStage(label), kickoff)
		if createErr := s.matchRepo.CreateBatch(ctx, tx, matches); createErr != nil {
			return fmt.Errorf("failed to create knockout stage %q: %w", label, createErr)
		}
		created = true
		return nil
	})
	if err != nil || !created {
		return false, err
	}

	s.notify(ProgressionEvent{Type: "STAGE_TRANSITION", TournamentID: tournament.ID, RoundLabel: label})
	return true, nil
}

// CheckCompletion marks the tournament completed when its Final has
// finished, or, for formats without a named Final, when every match is
// finished. Already-completed tournaments are left untouched.
func (s *progressionService) CheckCompletion(ctx context.Context, tournament *models.Tournament, match *models.Match) (bool, error) {
	if tournament.Status == models.TournamentCompleted {
		return false, nil
	}

	complete := match.Stage.IsFinal() && match.Finished()
	if !complete {
		all, err := s.matchRepo.ListByTournament(ctx, nil, tournament.ID, repositories.MatchFilter{})
		if err != nil {
			return false, fmt.Errorf("failed to list matches for completion check: %w", err)
		}
		if len(all) == 0 {
			return false, nil
		}
		complete = true
		for _, m := range all {
			if !m.Finished() {
				complete = false
				break
			}
		}
	}
	if !complete {
		return false, nil
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournament.ID, models.TournamentCompleted); err != nil {
		return false, fmt.Errorf("failed to mark tournament %d completed: %w", tournament.ID, err)
	}
	tournament.Status = models.TournamentCompleted

	s.notify(ProgressionEvent{Type: "TOURNAMENT_COMPLETED", TournamentID: tournament.ID})
	return true, nil
}

// teamsInOrder loads teams and returns them in the order of ids.
func (s *progressionService) teamsInOrder(ctx context.Context, ids []int) ([]*models.Team, error) {
	teams, err := s.teamRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	byID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	ordered := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("team %d not found while building next round", id)
		}
		ordered = append(ordered, t)
	}
	return ordered, nil
}
