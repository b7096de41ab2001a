package services

import (
	"context"
	"fmt"

	"github.com/pitchside/tournament-engine/brackets"
	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
)

type StandingsService interface {
	// GetStandings computes the flat table for a tournament. Standings
	// are always derived from match rows on demand, never cached.
	GetStandings(ctx context.Context, tournamentID int) ([]*models.StandingRow, error)

	// GetGroupStandings computes per-group tables for a combinationB
	// tournament, keyed by group name.
	GetGroupStandings(ctx context.Context, tournamentID int) ([]brackets.GroupTable, error)
}

type standingsService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
	matchRepo        repositories.MatchRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
		matchRepo:        matchRepo,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]*models.StandingRow, error) {
	teams, matches, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.ComputeStandings(teams, matches), nil
}

func (s *standingsService) GetGroupStandings(ctx context.Context, tournamentID int) ([]brackets.GroupTable, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if !tournament.IsGroupKnockout() {
		return nil, fmt.Errorf("%w: tournament %d has no group stage", ErrValidationFailed, tournamentID)
	}

	teams, matches, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.ComputeGroupStandings(teams, matches), nil
}

func (s *standingsService) load(ctx context.Context, tournamentID int) ([]*models.Team, []*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, nil, mapTournamentRepoError(err)
	}

	teams, err := loadRoster(ctx, s.registrationRepo, s.teamRepo, tournamentID)
	if err != nil {
		return nil, nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list matches for standings: %w", err)
	}
	return teams, matches, nil
}
