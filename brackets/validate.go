package brackets

import (
	"fmt"

	"github.com/pitchside/tournament-engine/models"
)

// ValidationReport describes how a group's fixture list deviates from a
// complete round robin. A clean group produces a report with Valid set
// and empty slices.
type ValidationReport struct {
	GroupName      string      `json:"group_name"`
	Valid          bool        `json:"valid"`
	ExpectedTotal  int         `json:"expected_total"`
	ActualTotal    int         `json:"actual_total"`
	MissingPairs   []string    `json:"missing_pairs,omitempty"`
	DuplicatePairs []string    `json:"duplicate_pairs,omitempty"`
	TeamCounts     map[int]int `json:"team_counts,omitempty"`
	Problems       []string    `json:"problems,omitempty"`
}

// ValidateGroupFixtures checks one group's matches against the
// round-robin completeness invariant: n*(n-1)/2 matches total, every
// unordered pair exactly once, every team on exactly n-1 fixtures. The
// matches argument must already be scoped to the group.
func ValidateGroupFixtures(group Group, matches []*models.Match) ValidationReport {
	n := len(group.Teams)
	report := ValidationReport{
		GroupName:     group.Name,
		ExpectedTotal: ExpectedRoundRobinMatches(n),
		ActualTotal:   len(matches),
		TeamCounts:    make(map[int]int, n),
	}

	names := make(map[int]string, n)
	for _, t := range group.Teams {
		report.TeamCounts[t.ID] = 0
		names[t.ID] = t.Name
	}
	pairName := func(k pairKey) string {
		return fmt.Sprintf("%s vs %s", names[k.lo], names[k.hi])
	}

	pairCounts := make(map[pairKey]int)
	for _, m := range matches {
		pairCounts[newPairKey(m.HomeTeamID, m.AwayTeamID)]++
		report.TeamCounts[m.HomeTeamID]++
		report.TeamCounts[m.AwayTeamID]++
	}

	if report.ActualTotal != report.ExpectedTotal {
		report.Problems = append(report.Problems,
			fmt.Sprintf("expected %d matches, found %d", report.ExpectedTotal, report.ActualTotal))
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			key := newPairKey(group.Teams[i].ID, group.Teams[j].ID)
			switch count := pairCounts[key]; {
			case count == 0:
				report.MissingPairs = append(report.MissingPairs, pairName(key))
			case count > 1:
				report.DuplicatePairs = append(report.DuplicatePairs, pairName(key))
			}
		}
	}
	if len(report.MissingPairs) > 0 {
		report.Problems = append(report.Problems,
			fmt.Sprintf("%d missing pairs", len(report.MissingPairs)))
	}
	if len(report.DuplicatePairs) > 0 {
		report.Problems = append(report.Problems,
			fmt.Sprintf("%d duplicated pairs", len(report.DuplicatePairs)))
	}

	for _, t := range group.Teams {
		if got := report.TeamCounts[t.ID]; got != n-1 {
			report.Problems = append(report.Problems,
				fmt.Sprintf("%s has %d fixtures, want %d", t.Name, got, n-1))
		}
	}

	report.Valid = len(report.Problems) == 0
	return report
}
