package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
	"github.com/pitchside/tournament-engine/storage"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type TeamService interface {
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, id int) error

	AddPlayer(ctx context.Context, player *models.Player) error
	RemovePlayer(ctx context.Context, playerID int) error

	UploadCrest(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		uploader:   uploader,
		logger:     ensureLogger(logger),
	}
}

func (s *teamService) CreateTeam(ctx context.Context, team *models.Team) error {
	if strings.TrimSpace(team.Name) == "" {
		return ErrTeamNameRequired
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return ErrTeamNameConflict
		}
		return err
	}
	return nil
}

func (s *teamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	players, err := s.playerRepo.ListByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load squad for team %d: %w", id, err)
	}
	team.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		team.Players = append(team.Players, *p)
	}

	s.populateCrestURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		s.populateCrestURL(t)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, team *models.Team) error {
	if strings.TrimSpace(team.Name) == "" {
		return ErrTeamNameRequired
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return ErrTeamNameConflict
		}
		return err
	}
	return nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) AddPlayer(ctx context.Context, player *models.Player) error {
	if strings.TrimSpace(player.Name) == "" {
		return fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}
	switch player.Position {
	case models.PositionGoalkeeper, models.PositionDefender, models.PositionMidfielder, models.PositionForward:
	default:
		return fmt.Errorf("%w: unknown position %q", ErrValidationFailed, player.Position)
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerInvalidTeam) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) RemovePlayer(ctx context.Context, playerID int) error {
	if err := s.playerRepo.Delete(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) UploadCrest(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrUploadInvalidContentType
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/crest.%s", teamID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("crest upload failed for team %d: %w", teamID, err)
	}

	if team.CrestKey != nil && *team.CrestKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *team.CrestKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous crest",
				slog.Int("team_id", teamID), slog.Any("error", delErr))
		}
	}

	if err = s.teamRepo.UpdateCrestKey(ctx, teamID, &result.Key); err != nil {
		return nil, err
	}
	team.CrestKey = &result.Key
	s.populateCrestURL(team)
	return team, nil
}

func (s *teamService) populateCrestURL(team *models.Team) {
	if s.uploader == nil || team.CrestKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.CrestKey); url != "" {
		team.CrestURL = &url
	}
}
