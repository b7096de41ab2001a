package brackets

import (
	"context"
	"fmt"
	"time"

	"github.com/pitchside/tournament-engine/models"
)

// pairKey identifies an unordered team pair.
type pairKey struct {
	lo, hi int
}

func newPairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type teamPair struct {
	home, away *models.Team
}

// ExpectedRoundRobinMatches is n*(n-1)/2: every unordered pair once.
func ExpectedRoundRobinMatches(n int) int {
	return n * (n - 1) / 2
}

// existingPairSet collects the unordered team pairs already scheduled in
// the given matches.
func existingPairSet(matches []*models.Match) map[pairKey]bool {
	pairs := make(map[pairKey]bool, len(matches))
	for _, m := range matches {
		pairs[newPairKey(m.HomeTeamID, m.AwayTeamID)] = true
	}
	return pairs
}

// GenerateGroupRoundRobin produces the missing round-robin matches for
// one group. Pairs already present in existing are skipped, which makes
// regeneration idempotent and supports topping up a group after a late
// registration; when the group already holds all n*(n-1)/2 pairs this is
// a no-op.
//
// Remaining pairs are bucketed greedily into rounds: a pair goes to the
// first round in which neither team already plays, falling back to the
// least-loaded round. Round r is dated startDate + (r-startRound) days.
func GenerateGroupRoundRobin(tournamentID int, group Group, existing []*models.Match, startDate time.Time, startRound int) ([]*models.Match, error) {
	n := len(group.Teams)
	if n < 2 {
		return nil, nil
	}

	scheduled := existingPairSet(existing)
	expected := ExpectedRoundRobinMatches(n)
	if len(scheduled) >= expected {
		return nil, nil
	}

	var missing []teamPair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if scheduled[newPairKey(group.Teams[i].ID, group.Teams[j].ID)] {
				continue
			}
			missing = append(missing, teamPair{home: group.Teams[i], away: group.Teams[j]})
		}
	}

	numRounds := n - 1
	if numRounds < 1 {
		numRounds = 1
	}
	rounds := make([][]teamPair, numRounds)
	roundTeams := make([]map[int]bool, numRounds)
	for i := range roundTeams {
		roundTeams[i] = make(map[int]bool)
	}

	for _, pair := range missing {
		assigned := false
		for r := 0; r < numRounds; r++ {
			if roundTeams[r][pair.home.ID] || roundTeams[r][pair.away.ID] {
				continue
			}
			rounds[r] = append(rounds[r], pair)
			roundTeams[r][pair.home.ID] = true
			roundTeams[r][pair.away.ID] = true
			assigned = true
			break
		}
		if !assigned {
			// No clean round left; take the one with the fewest matches.
			best := 0
			for r := 1; r < numRounds; r++ {
				if len(rounds[r]) < len(rounds[best]) {
					best = r
				}
			}
			rounds[best] = append(rounds[best], pair)
		}
	}

	var matches []*models.Match
	for idx, roundPairs := range rounds {
		if len(roundPairs) == 0 {
			continue
		}
		roundNumber := startRound + idx
		kickoff := startDate.AddDate(0, 0, idx)
		for _, pair := range roundPairs {
			matches = append(matches, &models.Match{
				TournamentID: tournamentID,
				HomeTeamID:   pair.home.ID,
				AwayTeamID:   pair.away.ID,
				HomeTeam:     pair.home,
				AwayTeam:     pair.away,
				Stage:        models.GroupStage(group.Name, roundNumber),
				KickoffAt:    kickoff,
				Status:       models.MatchScheduled,
			})
		}
	}

	if got := len(scheduled) + len(matches); got != expected {
		return nil, fmt.Errorf("%s: generated %d matches but %d existed, want %d total for %d teams",
			group.Name, len(matches), len(scheduled), expected, n)
	}
	return matches, nil
}

// leagueRounds schedules a full round robin with the circle method: fix
// the first team, rotate the rest one position per round. An odd team
// count gets a bye slot, so every team still meets every other exactly
// once. Guarantees one match per team per round and n-1 rounds for even
// n (n rounds when odd).
func leagueRounds(teams []*models.Team) [][]teamPair {
	n := len(teams)
	if n < 2 {
		return nil
	}

	rotating := make([]*models.Team, len(teams)-1)
	copy(rotating, teams[1:])
	if n%2 != 0 {
		rotating = append(rotating, nil) // bye slot
	}

	fixed := teams[0]
	numRounds := len(rotating)
	rounds := make([][]teamPair, 0, numRounds)

	for r := 0; r < numRounds; r++ {
		var round []teamPair
		if rotating[0] != nil {
			round = append(round, teamPair{home: fixed, away: rotating[0]})
		}
		for i := 1; i <= len(rotating)/2; i++ {
			a, b := rotating[i], rotating[len(rotating)-i]
			if i >= len(rotating)-i || a == nil || b == nil {
				continue
			}
			round = append(round, teamPair{home: a, away: b})
		}
		rounds = append(rounds, round)

		// Rotate right by one, keeping the fixed team out of the circle.
		last := rotating[len(rotating)-1]
		copy(rotating[1:], rotating[:len(rotating)-1])
		rotating[0] = last
	}
	return rounds
}

type LeagueGenerator struct{}

func NewLeagueGenerator() FixtureGenerator {
	return &LeagueGenerator{}
}

func (g *LeagueGenerator) GetName() string {
	return "League"
}

// GenerateFixtures schedules a whole-league round robin. Rounds land on
// consecutive days from the start date. Pairs already scheduled are
// skipped so a second invocation creates nothing.
func (g *LeagueGenerator) GenerateFixtures(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	if len(params.Teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	scheduled := existingPairSet(params.Existing)
	if len(scheduled) >= ExpectedRoundRobinMatches(len(params.Teams)) {
		return nil, nil
	}

	var matches []*models.Match
	for r, round := range leagueRounds(params.Teams) {
		kickoff := params.StartDate.AddDate(0, 0, r)
		for _, pair := range round {
			if scheduled[newPairKey(pair.home.ID, pair.away.ID)] {
				continue
			}
			matches = append(matches, &models.Match{
				TournamentID: params.Tournament.ID,
				HomeTeamID:   pair.home.ID,
				AwayTeamID:   pair.away.ID,
				HomeTeam:     pair.home,
				AwayTeam:     pair.away,
				Stage:        models.LeagueStage(r + 1),
				KickoffAt:    kickoff,
				Status:       models.MatchScheduled,
			})
		}
	}
	return matches, nil
}

type GroupKnockoutGenerator struct{}

func NewGroupKnockoutGenerator() FixtureGenerator {
	return &GroupKnockoutGenerator{}
}

func (g *GroupKnockoutGenerator) GetName() string {
	return "GroupKnockout"
}

// GenerateFixtures creates the group stage of a groups-into-knockout
// tournament. Only group matches are created here; the knockout stage is
// generated from the group tables once every group match has finished.
// Round k of every group shares a kickoff day, although groups of
// different sizes finish after different round counts.
func (g *GroupKnockoutGenerator) GenerateFixtures(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	if len(params.Teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	existingByGroup := make(map[string][]*models.Match)
	for _, m := range params.Existing {
		if m.Stage.IsGroup() {
			existingByGroup[m.Stage.Group] = append(existingByGroup[m.Stage.Group], m)
		}
	}

	var matches []*models.Match
	for _, group := range SplitIntoGroups(params.Teams) {
		groupMatches, err := GenerateGroupRoundRobin(params.Tournament.ID, group, existingByGroup[group.Name], params.StartDate, 1)
		if err != nil {
			return nil, err
		}
		matches = append(matches, groupMatches...)
	}
	return matches, nil
}
