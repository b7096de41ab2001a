package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pitchside/tournament-engine/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerInvalidTeam = errors.New("player references an unknown team")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	ApplyDelta(ctx context.Context, exec SQLExecutor, playerID int, delta models.PlayerDelta) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, team_id, name, position, goals, assists, appearances, clean_sheets`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (team_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, player.TeamID, player.Name, player.Position).Scan(&player.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrPlayerInvalidTeam
		}
	}
	return err
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Position,
		&p.Goals, &p.Assists, &p.Appearances, &p.CleanSheets,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if scanErr := rows.Scan(
			&p.ID, &p.TeamID, &p.Name, &p.Position,
			&p.Goals, &p.Assists, &p.Appearances, &p.CleanSheets,
		); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, playerID int, delta models.PlayerDelta) error {
	if delta.IsZero() {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		UPDATE players SET
			goals = goals + $1,
			assists = assists + $2,
			appearances = appearances + $3,
			clean_sheets = clean_sheets + $4
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query,
		delta.Goals, delta.Assists, delta.Appearances, delta.CleanSheets, playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply delta to player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
