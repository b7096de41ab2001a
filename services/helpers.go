package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
)

// runInTx executes fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// loadRoster returns a tournament's active teams in persisted seed
// order. Cancelled registrations are excluded.
func loadRoster(ctx context.Context, regRepo repositories.RegistrationRepository, teamRepo repositories.TeamRepository, tournamentID int) ([]*models.Team, error) {
	regs, err := regRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}

	ids := make([]int, 0, len(regs))
	for _, reg := range regs {
		if reg.CountsTowardRoster() {
			ids = append(ids, reg.TeamID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	teams, err := teamRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster teams for tournament %d: %w", tournamentID, err)
	}

	byID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	ordered := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
