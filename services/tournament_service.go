package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
	"github.com/pitchside/tournament-engine/storage"
)

// ResetResult reports what an administrative reset removed.
type ResetResult struct {
	DeletedMatches  int64 `json:"deleted_matches"`
	ReversedResults int   `json:"reversed_results"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, t *models.Tournament) error
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	// GetTournamentDetail loads the tournament with its registrations
	// and matches attached.
	GetTournamentDetail(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error

	UploadHeroImage(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error)

	// ResetFixtures deletes every match of the tournament and reverses
	// the team and player aggregate effects of its finished results.
	ResetFixtures(ctx context.Context, id int) (*ResetResult, error)
}

type tournamentService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
	playerRepo       repositories.PlayerRepository
	matchRepo        repositories.MatchRepository
	uploader         storage.FileUploader
	logger           *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
		playerRepo:       playerRepo,
		matchRepo:        matchRepo,
		uploader:         uploader,
		logger:           ensureLogger(logger),
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if err := validateTournament(t); err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = models.TournamentDraft
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return ErrTournamentNameConflict
		}
		return err
	}
	return nil
}

func validateTournament(t *models.Tournament) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	switch t.Format {
	case models.FormatLeague, models.FormatKnockout, models.FormatCombination, models.FormatChallenge:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrValidationFailed, t.Format)
	}
	if !t.EndDate.After(t.StartDate) {
		return ErrTournamentInvalidDateRange
	}
	if t.TeamMin < 2 || t.TeamMax < t.TeamMin {
		return ErrTournamentInvalidCapacity
	}
	if t.EntryFee < 0 {
		return fmt.Errorf("%w: entry fee cannot be negative", ErrValidationFailed)
	}
	return nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	s.populateHeroURL(t)
	return t, nil
}

func (s *tournamentService) GetTournamentDetail(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		regs, regErr := s.registrationRepo.ListByTournament(gctx, id)
		if regErr != nil {
			return fmt.Errorf("failed to load registrations: %w", regErr)
		}
		t.Registrations = make([]models.Registration, 0, len(regs))
		for _, reg := range regs {
			t.Registrations = append(t.Registrations, *reg)
		}
		return nil
	})

	g.Go(func() error {
		matches, matchErr := s.matchRepo.ListByTournament(gctx, nil, id, repositories.MatchFilter{})
		if matchErr != nil {
			return fmt.Errorf("failed to load matches: %w", matchErr)
		}
		t.Matches = make([]models.Match, 0, len(matches))
		for _, m := range matches {
			t.Matches = append(t.Matches, *m)
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.populateHeroURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, t *models.Tournament) error {
	if err := validateTournament(t); err != nil {
		return err
	}
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return ErrTournamentNameConflict
		}
		return err
	}
	return nil
}

// UpdateStatus moves a tournament through its lifecycle, rejecting
// transitions outside draft -> open -> closed -> completed.
func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	switch status {
	case models.TournamentDraft, models.TournamentOpen, models.TournamentClosed, models.TournamentCompleted:
	default:
		return nil, ErrTournamentInvalidStatus
	}

	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if !models.ValidStatusTransition(t.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, status)
	}

	if err = s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	t.Status = status

	s.logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", id), slog.String("status", string(status)))
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return mapTournamentRepoError(err)
	}
	return nil
}

func (s *tournamentService) UploadHeroImage(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrUploadInvalidContentType
	}

	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	key := fmt.Sprintf("tournaments/%d/hero.%s", id, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("hero image upload failed for tournament %d: %w", id, err)
	}

	if t.HeroImageKey != nil && *t.HeroImageKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *t.HeroImageKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous hero image",
				slog.Int("tournament_id", id), slog.Any("error", delErr))
		}
	}

	if err = s.tournamentRepo.UpdateHeroImageKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	t.HeroImageKey = &result.Key
	s.populateHeroURL(t)
	return t, nil
}

// ResetFixtures is the one place aggregate counters move other than
// match-result application: every finished result is reversed, then all
// matches are deleted. A completed tournament drops back to closed.
func (s *tournamentService) ResetFixtures(ctx context.Context, id int) (*ResetResult, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, nil, id, repositories.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for reset: %w", err)
	}

	squads := make(map[int][]*models.Player)
	squad := func(teamID int) ([]*models.Player, error) {
		if cached, ok := squads[teamID]; ok {
			return cached, nil
		}
		players, loadErr := s.playerRepo.ListByTeam(ctx, teamID)
		if loadErr != nil {
			return nil, loadErr
		}
		squads[teamID] = players
		return players, nil
	}

	result := &ResetResult{}
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, m := range matches {
			if !m.Finished() {
				continue
			}

			for _, teamID := range []int{m.HomeTeamID, m.AwayTeamID} {
				delta := models.ResultDeltaFor(m, teamID)
				if applyErr := s.teamRepo.ApplyDelta(ctx, tx, teamID, delta.Neg()); applyErr != nil {
					return applyErr
				}
			}

			scorers, evErr := s.matchRepo.ListScorersByMatch(ctx, tx, m.ID)
			if evErr != nil {
				return evErr
			}
			assists, evErr := s.matchRepo.ListAssistsByMatch(ctx, tx, m.ID)
			if evErr != nil {
				return evErr
			}
			homeSquad, evErr := squad(m.HomeTeamID)
			if evErr != nil {
				return evErr
			}
			awaySquad, evErr := squad(m.AwayTeamID)
			if evErr != nil {
				return evErr
			}
			for playerID, delta := range playerDeltas(m, scorers, assists, homeSquad, awaySquad) {
				if applyErr := s.playerRepo.ApplyDelta(ctx, tx, playerID, delta.Neg()); applyErr != nil {
					return applyErr
				}
			}
			result.ReversedResults++
		}

		deleted, delErr := s.matchRepo.DeleteByTournament(ctx, tx, id)
		if delErr != nil {
			return fmt.Errorf("failed to delete matches: %w", delErr)
		}
		result.DeletedMatches = deleted

		if t.Status == models.TournamentCompleted {
			if stErr := s.tournamentRepo.UpdateStatus(ctx, tx, id, models.TournamentClosed); stErr != nil {
				return stErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament fixtures reset",
		slog.Int("tournament_id", id),
		slog.Int64("deleted_matches", result.DeletedMatches),
		slog.Int("reversed_results", result.ReversedResults))
	return result, nil
}

func (s *tournamentService) populateHeroURL(t *models.Tournament) {
	if s.uploader == nil || t.HeroImageKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.HeroImageKey); url != "" {
		t.HeroImageURL = &url
	}
}
