package brackets

import (
	"sort"

	"github.com/pitchside/tournament-engine/models"
)

// ComputeStandings builds a table for the given teams from the given
// matches. Matches referencing teams outside the list are ignored, which
// lets callers scope the same match set to a single group. Rows sort by
// points, then goal difference, then goals scored, all descending; ties
// beyond that keep the input team order.
func ComputeStandings(teams []*models.Team, matches []*models.Match) []*models.StandingRow {
	rows := make([]*models.StandingRow, 0, len(teams))
	byTeam := make(map[int]*models.StandingRow, len(teams))
	for _, t := range teams {
		row := &models.StandingRow{TeamID: t.ID, Team: t}
		rows = append(rows, row)
		byTeam[t.ID] = row
	}

	for _, m := range matches {
		home, away := byTeam[m.HomeTeamID], byTeam[m.AwayTeamID]
		if home == nil || away == nil {
			continue
		}
		home.Played++
		away.Played++
		if !m.Finished() {
			continue
		}

		home.GoalsFor += m.HomeScore
		home.GoalsAgainst += m.AwayScore
		away.GoalsFor += m.AwayScore
		away.GoalsAgainst += m.HomeScore

		switch {
		case m.HomeScore > m.AwayScore:
			home.Wins++
			away.Losses++
		case m.HomeScore < m.AwayScore:
			away.Wins++
			home.Losses++
		default:
			home.Draws++
			away.Draws++
		}
	}

	for _, row := range rows {
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		row.Points = row.Wins*3 + row.Draws
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})
	return rows
}

// GroupTable is one group's computed standings.
type GroupTable struct {
	Name  string
	Table []*models.StandingRow
}

// ComputeGroupStandings recomputes the group split from the team list
// and builds a table per group, scoping each table to matches tagged
// with that group's name.
func ComputeGroupStandings(teams []*models.Team, matches []*models.Match) []GroupTable {
	byGroup := make(map[string][]*models.Match)
	for _, m := range matches {
		if m.Stage.IsGroup() {
			byGroup[m.Stage.Group] = append(byGroup[m.Stage.Group], m)
		}
	}

	groups := SplitIntoGroups(teams)
	tables := make([]GroupTable, 0, len(groups))
	for _, g := range groups {
		tables = append(tables, GroupTable{
			Name:  g.Name,
			Table: ComputeStandings(g.Teams, byGroup[g.Name]),
		})
	}
	return tables
}
