package models

import (
	"encoding/json"
	"time"
)

type TournamentFormat string

const (
	FormatLeague      TournamentFormat = "league"
	FormatKnockout    TournamentFormat = "knockout"
	FormatCombination TournamentFormat = "combination"
	FormatChallenge   TournamentFormat = "challenge"
)

type CombinationType string

const (
	// CombinationA runs a single league table whose top finishers seed a
	// knockout bracket.
	CombinationA CombinationType = "combinationA"
	// CombinationB splits teams into groups; the top two of each group
	// cross over into a knockout bracket.
	CombinationB CombinationType = "combinationB"
)

// TournamentStatus values correspond to the ENUM in the database.
type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentOpen      TournamentStatus = "open"
	TournamentClosed    TournamentStatus = "closed"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID            int              `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Description   *string          `json:"description,omitempty" db:"description"`
	City          string           `json:"city" db:"city"`
	Format        TournamentFormat `json:"format" db:"format"`
	StructureJSON *string          `json:"-" db:"structure_json"`
	Status        TournamentStatus `json:"status" db:"status"`
	TeamMin       int              `json:"team_min" db:"team_min"`
	TeamMax       int              `json:"team_max" db:"team_max"`
	EntryFee      float64          `json:"entry_fee" db:"entry_fee"`
	StartDate     time.Time        `json:"start_date" db:"start_date"`
	EndDate       time.Time        `json:"end_date" db:"end_date"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`

	HeroImageKey *string `json:"-" db:"hero_image_key"`
	HeroImageURL *string `json:"hero_image_url,omitempty" db:"-"`

	Registrations []Registration `json:"registrations,omitempty" db:"-"`
	Matches       []Match        `json:"matches,omitempty" db:"-"`
}

// TournamentStructure is the free-form configuration blob carried by a
// tournament; only combination tournaments use it today.
type TournamentStructure struct {
	CombinationType CombinationType `json:"combination_type"`
}

// CombinationType resolves the combination sub-format from the structure
// blob, defaulting to combinationA when unset or unparseable.
func (t *Tournament) CombinationType() CombinationType {
	if t.StructureJSON == nil || *t.StructureJSON == "" {
		return CombinationA
	}
	var structure TournamentStructure
	if err := json.Unmarshal([]byte(*t.StructureJSON), &structure); err != nil {
		return CombinationA
	}
	if structure.CombinationType != CombinationB {
		return CombinationA
	}
	return CombinationB
}

// IsGroupKnockout reports whether this tournament runs the groups-into-
// knockout combination format.
func (t *Tournament) IsGroupKnockout() bool {
	return t.Format == FormatCombination && t.CombinationType() == CombinationB
}

// ValidStatusTransition enumerates the legal lifecycle moves. Completed
// is terminal; draft tournaments may be opened, open ones closed, and
// closed ones completed.
func ValidStatusTransition(from, to TournamentStatus) bool {
	switch from {
	case TournamentDraft:
		return to == TournamentOpen
	case TournamentOpen:
		return to == TournamentClosed || to == TournamentCompleted
	case TournamentClosed:
		return to == TournamentCompleted
	}
	return false
}
