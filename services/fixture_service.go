package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pitchside/tournament-engine/brackets"
	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
)

// GenerateResult reports what initial fixture generation produced.
type GenerateResult struct {
	Generator       string          `json:"generator"`
	CreatedMatches  []*models.Match `json:"created_matches"`
	SkippedExisting bool            `json:"skipped_existing"`
}

// RepairResult reports a validate-and-repair pass over a tournament's
// groups.
type RepairResult struct {
	Reports  []brackets.ValidationReport `json:"reports"`
	Repaired []string                    `json:"repaired_groups,omitempty"`
	Deleted  int64                       `json:"deleted_matches"`
	Created  int                         `json:"created_matches"`
}

type FixtureService interface {
	GenerateFixtures(ctx context.Context, tournamentID int) (*GenerateResult, error)
	ValidateFixtures(ctx context.Context, tournamentID int) ([]brackets.ValidationReport, error)
	RepairFixtures(ctx context.Context, tournamentID int) (*RepairResult, error)
}

type fixtureService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
	matchRepo        repositories.MatchRepository
	logger           *slog.Logger
}

func NewFixtureService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
		matchRepo:        matchRepo,
		logger:           ensureLogger(logger),
	}
}

// GenerateFixtures creates the initial fixture set for a tournament.
// The whole batch is inserted in one transaction: a generation error
// persists nothing. Re-invocation on an already-generated tournament is
// a no-op because the generators skip scheduled pairs.
func (s *fixtureService) GenerateFixtures(ctx context.Context, tournamentID int) (*GenerateResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	teams, err := loadRoster(ctx, s.registrationRepo, s.teamRepo, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(teams) < tournament.TeamMin {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrRosterBelowMinimum, len(teams), tournament.TeamMin)
	}

	existing, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list existing matches: %w", err)
	}

	generator := brackets.GeneratorForFormat(tournament)
	created, err := generator.GenerateFixtures(ctx, brackets.GenerateParams{
		Tournament: tournament,
		Teams:      teams,
		Existing:   existing,
		StartDate:  tournament.StartDate,
	})
	if err != nil {
		return nil, fmt.Errorf("fixture generation failed for tournament %d: %w", tournamentID, err)
	}

	result := &GenerateResult{Generator: generator.GetName(), CreatedMatches: created}
	if len(created) == 0 {
		result.SkippedExisting = len(existing) > 0
		return result, nil
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.matchRepo.CreateBatch(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fixtures generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", generator.GetName()),
		slog.Int("matches", len(created)))
	return result, nil
}

// ValidateFixtures checks every group of a group-stage tournament
// against the round-robin completeness invariant.
func (s *fixtureService) ValidateFixtures(ctx context.Context, tournamentID int) ([]brackets.ValidationReport, error) {
	_, groups, matchesByGroup, err := s.loadGroupState(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	reports := make([]brackets.ValidationReport, 0, len(groups))
	for _, group := range groups {
		reports = append(reports, brackets.ValidateGroupFixtures(group, matchesByGroup[group.Name]))
	}
	return reports, nil
}

// RepairFixtures validates each group and, for every violated group,
// deletes all of its matches and regenerates the round robin from
// scratch. Finished results in a repaired group are lost; partial
// patching of a corrupted group cannot be reconciled safely.
func (s *fixtureService) RepairFixtures(ctx context.Context, tournamentID int) (*RepairResult, error) {
	tournament, groups, matchesByGroup, err := s.loadGroupState(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	result := &RepairResult{}
	for _, group := range groups {
		report := brackets.ValidateGroupFixtures(group, matchesByGroup[group.Name])
		result.Reports = append(result.Reports, report)
		if report.Valid {
			continue
		}

		s.logger.WarnContext(ctx, "group fixtures invalid, regenerating",
			slog.Int("tournament_id", tournamentID),
			slog.String("group", group.Name),
			slog.Any("problems", report.Problems))

		err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
			deleted, delErr := s.matchRepo.DeleteByGroup(ctx, tx, tournamentID, group.Name)
			if delErr != nil {
				return fmt.Errorf("failed to delete matches for %s: %w", group.Name, delErr)
			}
			result.Deleted += deleted

			regenerated, genErr := brackets.GenerateGroupRoundRobin(tournamentID, group, nil, tournament.StartDate, 1)
			if genErr != nil {
				return genErr
			}
			if createErr := s.matchRepo.CreateBatch(ctx, tx, regenerated); createErr != nil {
				return createErr
			}
			result.Created += len(regenerated)
			return nil
		})
		if err != nil {
			return nil, err
		}
		result.Repaired = append(result.Repaired, group.Name)
	}
	return result, nil
}

func (s *fixtureService) loadGroupState(ctx context.Context, tournamentID int) (*models.Tournament, []brackets.Group, map[string][]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, nil, nil, mapTournamentRepoError(err)
	}
	if !tournament.IsGroupKnockout() {
		return nil, nil, nil, fmt.Errorf("%w: tournament %d has no group stage", ErrValidationFailed, tournamentID)
	}

	teams, err := loadRoster(ctx, s.registrationRepo, s.teamRepo, tournamentID)
	if err != nil {
		return nil, nil, nil, err
	}

	groupKind := models.StageGroup
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, repositories.MatchFilter{StageKind: &groupKind})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list group matches: %w", err)
	}

	matchesByGroup := make(map[string][]*models.Match)
	for _, m := range matches {
		matchesByGroup[m.Stage.Group] = append(matchesByGroup[m.Stage.Group], m)
	}
	return tournament, brackets.SplitIntoGroups(teams), matchesByGroup, nil
}

func mapTournamentRepoError(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}
