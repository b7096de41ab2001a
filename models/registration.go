package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationPaid      RegistrationStatus = "paid"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Registration links a team to a tournament. Unique per (team,
// tournament). SeedOrder is the persisted ordering that grouping and
// knockout pairing depend on; fixture regeneration must see teams in the
// same order every time, so the order is never left to query ordering.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	TeamID       int                `json:"team_id" db:"team_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	PaidAmount   float64            `json:"paid_amount" db:"paid_amount"`
	SeedOrder    int                `json:"seed_order" db:"seed_order"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// CountsTowardRoster reports whether this registration contributes a
// team to fixture generation.
func (r *Registration) CountsTowardRoster() bool {
	return r.Status == RegistrationPending || r.Status == RegistrationPaid
}
