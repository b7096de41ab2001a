package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchFinished  MatchStatus = "finished"
)

type Match struct {
	ID            int         `json:"id" db:"id"`
	TournamentID  int         `json:"tournament_id" db:"tournament_id"`
	HomeTeamID    int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID    int         `json:"away_team_id" db:"away_team_id"`
	Stage         Stage       `json:"stage"`
	KickoffAt     time.Time   `json:"kickoff_at" db:"kickoff_at"`
	Status        MatchStatus `json:"status" db:"status"`
	HomeScore     int         `json:"home_score" db:"home_score"`
	AwayScore     int         `json:"away_score" db:"away_score"`
	HomePenalties *int        `json:"home_penalties,omitempty" db:"home_penalties"`
	AwayPenalties *int        `json:"away_penalties,omitempty" db:"away_penalties"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`

	HomeTeam *Team `json:"home_team,omitempty" db:"-"`
	AwayTeam *Team `json:"away_team,omitempty" db:"-"`
}

func (m *Match) Finished() bool {
	return m.Status == MatchFinished
}

// Winner returns the advancing team of a finished match. A level score
// is decided by penalties; a finished match that is level with absent or
// equal penalties has no winner and reports ok=false. Callers count only
// resolved winners, so an unresolved draw naturally blocks advancement.
func (m *Match) Winner() (teamID int, ok bool) {
	if m.Status != MatchFinished {
		return 0, false
	}
	switch {
	case m.HomeScore > m.AwayScore:
		return m.HomeTeamID, true
	case m.AwayScore > m.HomeScore:
		return m.AwayTeamID, true
	}
	if m.HomePenalties == nil || m.AwayPenalties == nil {
		return 0, false
	}
	switch {
	case *m.HomePenalties > *m.AwayPenalties:
		return m.HomeTeamID, true
	case *m.AwayPenalties > *m.HomePenalties:
		return m.AwayTeamID, true
	}
	return 0, false
}

// ResultDelta is the change a single finished match contributes to one
// team's aggregate counters. Applying the negation of the delta derived
// from a match's previous state makes score corrections reversible.
type ResultDelta struct {
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
}

func (d ResultDelta) Neg() ResultDelta {
	return ResultDelta{
		Wins:         -d.Wins,
		Draws:        -d.Draws,
		Losses:       -d.Losses,
		GoalsFor:     -d.GoalsFor,
		GoalsAgainst: -d.GoalsAgainst,
	}
}

func (d ResultDelta) IsZero() bool {
	return d == ResultDelta{}
}

// ResultDeltaFor derives the aggregate delta a match contributes to the
// given team. The zero delta is returned for matches that are not
// finished and for teams not playing in the match.
func ResultDeltaFor(m *Match, teamID int) ResultDelta {
	if m == nil || m.Status != MatchFinished {
		return ResultDelta{}
	}
	var d ResultDelta
	switch teamID {
	case m.HomeTeamID:
		d.GoalsFor = m.HomeScore
		d.GoalsAgainst = m.AwayScore
		switch {
		case m.HomeScore > m.AwayScore:
			d.Wins = 1
		case m.HomeScore < m.AwayScore:
			d.Losses = 1
		default:
			d.Draws = 1
		}
	case m.AwayTeamID:
		d.GoalsFor = m.AwayScore
		d.GoalsAgainst = m.HomeScore
		switch {
		case m.AwayScore > m.HomeScore:
			d.Wins = 1
		case m.AwayScore < m.HomeScore:
			d.Losses = 1
		default:
			d.Draws = 1
		}
	}
	return d
}

// MatchScorer records a single goal.
type MatchScorer struct {
	ID       int `json:"id" db:"id"`
	MatchID  int `json:"match_id" db:"match_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	TeamID   int `json:"team_id" db:"team_id"`
	Minute   int `json:"minute" db:"minute"`
}

// MatchAssist records the assist for a goal, when there was one.
type MatchAssist struct {
	ID       int `json:"id" db:"id"`
	GoalID   int `json:"goal_id" db:"goal_id"`
	MatchID  int `json:"match_id" db:"match_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	TeamID   int `json:"team_id" db:"team_id"`
}
