package brackets

import (
	"testing"

	"github.com/pitchside/tournament-engine/models"
)

func groupWithFixtures(t *testing.T, n int) (Group, []*models.Match) {
	t.Helper()
	group := Group{Name: "Group A", Teams: makeTeams(n)}
	matches, err := GenerateGroupRoundRobin(1, group, nil, testStart, 1)
	if err != nil {
		t.Fatalf("GenerateGroupRoundRobin: %v", err)
	}
	return group, matches
}

func TestValidateGroupFixturesClean(t *testing.T) {
	group, matches := groupWithFixtures(t, 4)

	report := ValidateGroupFixtures(group, matches)
	if !report.Valid {
		t.Fatalf("clean group reported invalid: %v", report.Problems)
	}
	if report.ExpectedTotal != 6 || report.ActualTotal != 6 {
		t.Errorf("totals = %d/%d, want 6/6", report.ActualTotal, report.ExpectedTotal)
	}
	if len(report.MissingPairs) != 0 || len(report.DuplicatePairs) != 0 {
		t.Errorf("clean group has missing=%v duplicates=%v", report.MissingPairs, report.DuplicatePairs)
	}
	for teamID, count := range report.TeamCounts {
		if count != 3 {
			t.Errorf("team %d has %d fixtures, want 3", teamID, count)
		}
	}
}

func TestValidateGroupFixturesMissing(t *testing.T) {
	group, matches := groupWithFixtures(t, 4)

	report := ValidateGroupFixtures(group, matches[1:])
	if report.Valid {
		t.Fatal("group with a missing fixture reported valid")
	}
	if len(report.MissingPairs) != 1 {
		t.Errorf("missing pairs = %v, want exactly 1", report.MissingPairs)
	}
	if report.ActualTotal != 5 {
		t.Errorf("actual total = %d, want 5", report.ActualTotal)
	}
}

func TestValidateGroupFixturesDuplicate(t *testing.T) {
	group, matches := groupWithFixtures(t, 4)

	dup := *matches[0]
	report := ValidateGroupFixtures(group, append(matches, &dup))
	if report.Valid {
		t.Fatal("group with a duplicated fixture reported valid")
	}
	if len(report.DuplicatePairs) != 1 {
		t.Errorf("duplicate pairs = %v, want exactly 1", report.DuplicatePairs)
	}
}

// A reversed-home-and-away duplicate is still the same unordered pair.
func TestValidateGroupFixturesReversedDuplicate(t *testing.T) {
	group, matches := groupWithFixtures(t, 4)

	reversed := *matches[0]
	reversed.HomeTeamID, reversed.AwayTeamID = reversed.AwayTeamID, reversed.HomeTeamID
	report := ValidateGroupFixtures(group, append(matches, &reversed))
	if len(report.DuplicatePairs) != 1 {
		t.Errorf("duplicate pairs = %v, want the reversed pair flagged", report.DuplicatePairs)
	}
}

func TestValidateGroupFixturesEmpty(t *testing.T) {
	group := Group{Name: "Group A", Teams: makeTeams(3)}

	report := ValidateGroupFixtures(group, nil)
	if report.Valid {
		t.Fatal("empty fixture list reported valid")
	}
	if len(report.MissingPairs) != 3 {
		t.Errorf("missing pairs = %v, want all 3", report.MissingPairs)
	}
}
