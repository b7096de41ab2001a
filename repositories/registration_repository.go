package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/pitchside/tournament-engine/models"
)

var (
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrRegistrationDuplicate = errors.New("team already registered for this tournament")
	ErrRegistrationInvalid   = errors.New("registration references an unknown team or tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	// ListByTournament returns registrations ordered by seed order, so
	// callers iterating the roster always see the same team sequence.
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error)
	CountActive(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	NextSeedOrder(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
	RecordPayment(ctx context.Context, id int, amount float64) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, tournament_id, team_id, status, paid_amount, seed_order, created_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (tournament_id, team_id, status, paid_amount, seed_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		reg.TournamentID, reg.TeamID, reg.Status, reg.PaidAmount, reg.SeedOrder,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrRegistrationDuplicate
			case "23503":
				return ErrRegistrationInvalid
			}
		}
	}
	return err
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.Status,
		&reg.PaidAmount, &reg.SeedOrder, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE tournament_id = $1
		ORDER BY seed_order, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*models.Registration
	for rows.Next() {
		reg := &models.Registration{}
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.Status,
			&reg.PaidAmount, &reg.SeedOrder, &reg.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) CountActive(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM registrations
		WHERE tournament_id = $1 AND status IN ($2, $3)`

	var count int
	err := executor.QueryRowContext(ctx, query,
		tournamentID, models.RegistrationPending, models.RegistrationPaid,
	).Scan(&count)
	return count, err
}

// NextSeedOrder allocates the next seed slot. Callers registering a team
// should run this and Create in one transaction so concurrent
// registrations cannot claim the same slot.
func (r *postgresRegistrationRepository) NextSeedOrder(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COALESCE(MAX(seed_order), 0) + 1 FROM registrations WHERE tournament_id = $1`

	var next int
	err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&next)
	return next, err
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) RecordPayment(ctx context.Context, id int, amount float64) error {
	query := `UPDATE registrations SET status = $1, paid_amount = paid_amount + $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, models.RegistrationPaid, amount, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
