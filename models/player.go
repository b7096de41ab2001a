package models

type PlayerPosition string

const (
	PositionGoalkeeper PlayerPosition = "GK"
	PositionDefender   PlayerPosition = "DF"
	PositionMidfielder PlayerPosition = "MF"
	PositionForward    PlayerPosition = "FW"
)

type Player struct {
	ID       int            `json:"id" db:"id"`
	TeamID   int            `json:"team_id" db:"team_id"`
	Name     string         `json:"name" db:"name"`
	Position PlayerPosition `json:"position" db:"position"`

	// Aggregate counters, mutated only by applying match result deltas.
	Goals       int `json:"goals" db:"goals"`
	Assists     int `json:"assists" db:"assists"`
	Appearances int `json:"appearances" db:"appearances"`
	CleanSheets int `json:"clean_sheets" db:"clean_sheets"`
}

// PlayerDelta is the per-player counterpart of ResultDelta.
type PlayerDelta struct {
	Goals       int
	Assists     int
	Appearances int
	CleanSheets int
}

func (d PlayerDelta) Neg() PlayerDelta {
	return PlayerDelta{
		Goals:       -d.Goals,
		Assists:     -d.Assists,
		Appearances: -d.Appearances,
		CleanSheets: -d.CleanSheets,
	}
}

func (d PlayerDelta) IsZero() bool {
	return d == PlayerDelta{}
}
