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
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already taken")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByIDs(ctx context.Context, ids []int) ([]*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateCrestKey(ctx context.Context, teamID int, crestKey *string) error
	ApplyDelta(ctx context.Context, exec SQLExecutor, teamID int, delta models.ResultDelta) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `id, name, manager_name, manager_email, phone, wins, draws, losses, goals_for, goals_against, crest_key, created_at`

func scanTeam(scanner interface{ Scan(dest ...interface{}) error }) (*models.Team, error) {
	t := &models.Team{}
	err := scanner.Scan(
		&t.ID, &t.Name, &t.ManagerName, &t.ManagerEmail, &t.Phone,
		&t.Wins, &t.Draws, &t.Losses, &t.GoalsFor, &t.GoalsAgainst,
		&t.CrestKey, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, manager_name, manager_email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.Name, team.ManagerName, team.ManagerEmail, team.Phone,
	).Scan(&team.ID, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) GetByIDs(ctx context.Context, ids []int) ([]*models.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0, len(ids))
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			name = $1,
			manager_name = $2,
			manager_email = $3,
			phone = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		team.Name, team.ManagerName, team.ManagerEmail, team.Phone, team.ID,
	)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateCrestKey(ctx context.Context, teamID int, crestKey *string) error {
	query := `UPDATE teams SET crest_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, crestKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update team crest key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// ApplyDelta shifts a team's aggregate counters in place. Deltas may be
// negative (reversing a previously applied result), so the update is
// expressed as increments rather than absolute values.
func (r *postgresTeamRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, teamID int, delta models.ResultDelta) error {
	if delta.IsZero() {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams SET
			wins = wins + $1,
			draws = draws + $2,
			losses = losses + $3,
			goals_for = goals_for + $4,
			goals_against = goals_against + $5
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		delta.Wins, delta.Draws, delta.Losses, delta.GoalsFor, delta.GoalsAgainst, teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply result delta to team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
		return ErrTeamNameConflict
	}
	return err
}
