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

type RegistrationService interface {
	// RegisterTeam enters a team into an open tournament, allocating the
	// next seed slot. Seed order is persisted at registration time so
	// grouping and pairing see a stable team order forever after.
	RegisterTeam(ctx context.Context, tournamentID, teamID int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error)
	RecordPayment(ctx context.Context, registrationID int, amount float64) error
	Cancel(ctx context.Context, registrationID int) error
}

type registrationService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	teamRepo         repositories.TeamRepository
	registrationRepo repositories.RegistrationRepository
	logger           *slog.Logger
}

func NewRegistrationService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	registrationRepo repositories.RegistrationRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		teamRepo:         teamRepo,
		registrationRepo: registrationRepo,
		logger:           ensureLogger(logger),
	}
}

func (s *registrationService) RegisterTeam(ctx context.Context, tournamentID, teamID int) (*models.Registration, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if tournament.Status != models.TournamentOpen {
		return nil, ErrRegistrationNotOpen
	}

	if _, err = s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	reg := &models.Registration{
		TournamentID: tournamentID,
		TeamID:       teamID,
		Status:       models.RegistrationPending,
	}

	// Capacity check and seed allocation run in one transaction so two
	// concurrent registrations cannot both take the last slot or the
	// same seed.
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		count, txErr := s.registrationRepo.CountActive(ctx, tx, tournamentID)
		if txErr != nil {
			return fmt.Errorf("failed to count registrations: %w", txErr)
		}
		if count >= tournament.TeamMax {
			return ErrTournamentFull
		}

		seed, txErr := s.registrationRepo.NextSeedOrder(ctx, tx, tournamentID)
		if txErr != nil {
			return fmt.Errorf("failed to allocate seed order: %w", txErr)
		}
		reg.SeedOrder = seed

		if txErr = s.registrationRepo.Create(ctx, tx, reg); txErr != nil {
			if errors.Is(txErr, repositories.ErrRegistrationDuplicate) {
				return ErrRegistrationConflict
			}
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "team registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("team_id", teamID),
		slog.Int("seed_order", reg.SeedOrder))
	return reg, nil
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	regs, err := s.registrationRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.TeamID)
	}
	teams, err := s.teamRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	for _, reg := range regs {
		reg.Team = byID[reg.TeamID]
	}
	return regs, nil
}

func (s *registrationService) RecordPayment(ctx context.Context, registrationID int, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: payment amount must be non-negative", ErrValidationFailed)
	}
	if err := s.registrationRepo.RecordPayment(ctx, registrationID, amount); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	return nil
}

func (s *registrationService) Cancel(ctx context.Context, registrationID int) error {
	if err := s.registrationRepo.UpdateStatus(ctx, registrationID, models.RegistrationCancelled); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	return nil
}
