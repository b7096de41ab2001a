package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pitchside/tournament-engine/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchInvalidTeam = errors.New("match references an unknown team or tournament")
)

// MatchFilter narrows a tournament's match list. Nil fields match
// everything; stage fields are exact comparisons against the tagged
// stage columns.
type MatchFilter struct {
	StageKind  *models.StageKind
	StageGroup *string
	StageLabel *string
	Status     *models.MatchStatus
}

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, group string) (int64, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)

	InsertScorer(ctx context.Context, exec SQLExecutor, scorer *models.MatchScorer) error
	InsertAssist(ctx context.Context, exec SQLExecutor, assist *models.MatchAssist) error
	ListScorersByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchScorer, error)
	ListAssistsByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchAssist, error)
	DeleteMatchEvents(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, home_team_id, away_team_id,
	stage_kind, stage_group, stage_round, stage_label,
	kickoff_at, status, home_score, away_score, home_penalties, away_penalties, created_at`

func scanMatch(scanner interface{ Scan(dest ...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := scanner.Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID,
		&m.Stage.Kind, &m.Stage.Group, &m.Stage.Round, &m.Stage.Label,
		&m.KickoffAt, &m.Status, &m.HomeScore, &m.AwayScore,
		&m.HomePenalties, &m.AwayPenalties, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateBatch persists a generated fixture set. All inserts run on the
// given executor, so a caller-owned transaction makes generation atomic:
// either every match lands or none do.
func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, home_team_id, away_team_id,
			stage_kind, stage_group, stage_round, stage_label,
			kickoff_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.HomeTeamID, m.AwayTeamID,
			m.Stage.Kind, m.Stage.Group, m.Stage.Round, m.Stage.Label,
			m.KickoffAt, m.Status,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert match %d vs %d: %w", m.HomeTeamID, m.AwayTeamID, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`

	args := []interface{}{tournamentID}
	argID := 2

	if filter.StageKind != nil {
		query += fmt.Sprintf(" AND stage_kind = $%d", argID)
		args = append(args, *filter.StageKind)
		argID++
	}
	if filter.StageGroup != nil {
		query += fmt.Sprintf(" AND stage_group = $%d", argID)
		args = append(args, *filter.StageGroup)
		argID++
	}
	if filter.StageLabel != nil {
		query += fmt.Sprintf(" AND stage_label = $%d", argID)
		args = append(args, *filter.StageLabel)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY kickoff_at, id"

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			status = $1,
			home_score = $2,
			away_score = $3,
			home_penalties = $4,
			away_penalties = $5
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		match.Status, match.HomeScore, match.AwayScore,
		match.HomePenalties, match.AwayPenalties, match.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// DeleteByGroup removes every match tagged with the given group name.
// Used by fixture repair, which regenerates the group from scratch.
func (r *postgresMatchRepository) DeleteByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, group string) (int64, error) {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE tournament_id = $1 AND stage_kind = $2 AND stage_group = $3`
	result, err := executor.ExecContext(ctx, query, tournamentID, models.StageGroup, group)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE tournament_id = $1`
	result, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) InsertScorer(ctx context.Context, exec SQLExecutor, scorer *models.MatchScorer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_scorers (match_id, player_id, team_id, minute)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		scorer.MatchID, scorer.PlayerID, scorer.TeamID, scorer.Minute,
	).Scan(&scorer.ID)
}

func (r *postgresMatchRepository) InsertAssist(ctx context.Context, exec SQLExecutor, assist *models.MatchAssist) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_assists (goal_id, match_id, player_id, team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		assist.GoalID, assist.MatchID, assist.PlayerID, assist.TeamID,
	).Scan(&assist.ID)
}

func (r *postgresMatchRepository) ListScorersByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchScorer, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, match_id, player_id, team_id, minute FROM match_scorers WHERE match_id = $1 ORDER BY minute, id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scorers []*models.MatchScorer
	for rows.Next() {
		s := &models.MatchScorer{}
		if scanErr := rows.Scan(&s.ID, &s.MatchID, &s.PlayerID, &s.TeamID, &s.Minute); scanErr != nil {
			return nil, scanErr
		}
		scorers = append(scorers, s)
	}
	return scorers, rows.Err()
}

func (r *postgresMatchRepository) ListAssistsByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchAssist, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, goal_id, match_id, player_id, team_id FROM match_assists WHERE match_id = $1 ORDER BY id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assists []*models.MatchAssist
	for rows.Next() {
		a := &models.MatchAssist{}
		if scanErr := rows.Scan(&a.ID, &a.GoalID, &a.MatchID, &a.PlayerID, &a.TeamID); scanErr != nil {
			return nil, scanErr
		}
		assists = append(assists, a)
	}
	return assists, rows.Err()
}

// DeleteMatchEvents clears a match's goal and assist rows. Score
// corrections call this before re-entering events.
func (r *postgresMatchRepository) DeleteMatchEvents(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM match_assists WHERE match_id = $1`, matchID); err != nil {
		return err
	}
	_, err := executor.ExecContext(ctx, `DELETE FROM match_scorers WHERE match_id = $1`, matchID)
	return err
}
