package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	ManagerName  string    `json:"manager_name" db:"manager_name"`
	ManagerEmail string    `json:"manager_email" db:"manager_email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Aggregate counters, mutated only by applying match result deltas.
	Wins         int `json:"wins" db:"wins"`
	Draws        int `json:"draws" db:"draws"`
	Losses       int `json:"losses" db:"losses"`
	GoalsFor     int `json:"goals_for" db:"goals_for"`
	GoalsAgainst int `json:"goals_against" db:"goals_against"`

	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`

	Players []Player `json:"players,omitempty" db:"-"`
}

func (t *Team) Points() int {
	return t.Wins*3 + t.Draws
}

func (t *Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}
