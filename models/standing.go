package models

// StandingRow is one team's line in a computed table. Standings are
// always derived from match rows on demand, never cached.
//
// Played counts every match referencing the team, scheduled or finished,
// so an in-progress table still shows the full fixture denominator; all
// other columns accumulate from finished matches only.
type StandingRow struct {
	TeamID         int   `json:"team_id"`
	Team           *Team `json:"team,omitempty"`
	Played         int   `json:"played"`
	Wins           int   `json:"wins"`
	Draws          int   `json:"draws"`
	Losses         int   `json:"losses"`
	GoalsFor       int   `json:"goals_for"`
	GoalsAgainst   int   `json:"goals_against"`
	GoalDifference int   `json:"goal_difference"`
	Points         int   `json:"points"`
}
