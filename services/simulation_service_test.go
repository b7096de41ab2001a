package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pitchside/tournament-engine/models"
)

func testSimulator(seed int64) *simulationService {
	return &simulationService{rng: rand.New(rand.NewSource(seed))}
}

func TestInventScoreBounds(t *testing.T) {
	s := testSimulator(1)
	for i := 0; i < 1000; i++ {
		home, away := s.inventScore()
		if home < 0 || home > 6 || away < 0 || away > 6 {
			t.Fatalf("iteration %d: score %d-%d out of range", i, home, away)
		}
	}
}

// A knockout draw must always come with an unequal penalty shootout so
// the match resolves to a winner.
func TestInventResultKnockoutNeverLevel(t *testing.T) {
	s := testSimulator(2)
	match := &models.Match{
		ID: 1, HomeTeamID: 10, AwayTeamID: 20,
		Stage: models.KnockoutStage("Semi-Finals"),
	}
	home := squad(10, 100, models.PositionGoalkeeper, models.PositionForward, models.PositionMidfielder)
	away := squad(20, 200, models.PositionGoalkeeper, models.PositionForward, models.PositionDefender)

	for i := 0; i < 500; i++ {
		input := s.inventResult(match, home, away)
		if input.HomeScore != input.AwayScore {
			if input.HomePenalties != nil || input.AwayPenalties != nil {
				t.Fatalf("iteration %d: decided match %d-%d has penalties", i, input.HomeScore, input.AwayScore)
			}
			continue
		}
		if input.HomePenalties == nil || input.AwayPenalties == nil {
			t.Fatalf("iteration %d: knockout draw %d-%d without penalties", i, input.HomeScore, input.AwayScore)
		}
		if *input.HomePenalties == *input.AwayPenalties {
			t.Fatalf("iteration %d: level shootout %d-%d", i, *input.HomePenalties, *input.AwayPenalties)
		}
	}
}

func TestInventResultLeagueAllowsDraws(t *testing.T) {
	s := testSimulator(3)
	match := &models.Match{
		ID: 1, HomeTeamID: 10, AwayTeamID: 20,
		Stage: models.LeagueStage(1),
	}
	home := squad(10, 100, models.PositionForward)
	away := squad(20, 200, models.PositionForward)

	draws := 0
	for i := 0; i < 500; i++ {
		input := s.inventResult(match, home, away)
		if input.HomePenalties != nil || input.AwayPenalties != nil {
			t.Fatalf("iteration %d: league match got penalties", i)
		}
		if input.HomeScore == input.AwayScore {
			draws++
		}
	}
	// Goalless draws alone are rolled at 30%, so draws must show up.
	if draws == 0 {
		t.Error("500 league simulations produced no draws")
	}
}

func TestInventGoalsMatchesScore(t *testing.T) {
	s := testSimulator(4)
	players := squad(10, 100,
		models.PositionGoalkeeper, models.PositionDefender,
		models.PositionMidfielder, models.PositionForward)

	for score := 0; score <= 5; score++ {
		goals := s.inventGoals(score, 10, players)
		if len(goals) != score {
			t.Fatalf("score %d produced %d goal events", score, len(goals))
		}
		for _, g := range goals {
			if g.TeamID != 10 {
				t.Errorf("goal credited to team %d, want 10", g.TeamID)
			}
			if g.Minute < 1 || g.Minute > 90 {
				t.Errorf("goal minute %d out of range", g.Minute)
			}
			// Scorers come from the attacking positions when any exist.
			if g.PlayerID != 102 && g.PlayerID != 103 {
				t.Errorf("scorer %d is not a midfielder or forward", g.PlayerID)
			}
			if g.AssistPlayerID != nil && *g.AssistPlayerID == g.PlayerID {
				t.Errorf("player %d assisted their own goal", g.PlayerID)
			}
		}
	}
}

func TestInventGoalsNoAttackersFallsBack(t *testing.T) {
	s := testSimulator(5)
	players := squad(10, 100, models.PositionGoalkeeper, models.PositionDefender)

	goals := s.inventGoals(3, 10, players)
	if len(goals) != 3 {
		t.Fatalf("got %d goal events, want 3", len(goals))
	}
	for _, g := range goals {
		if g.PlayerID != 100 && g.PlayerID != 101 {
			t.Errorf("scorer %d is not in the squad", g.PlayerID)
		}
	}
}

func TestWeightedPickDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	values := []int{0, 1, 2, 3}
	weights := []int{15, 30, 35, 20}

	counts := make(map[int]int)
	for i := 0; i < 10000; i++ {
		v := weightedPick(rng, values, weights)
		counts[v]++
	}
	for _, v := range values {
		if counts[v] == 0 {
			t.Errorf("value %d never picked", v)
		}
	}
	// The heaviest weight should dominate the lightest by a clear margin.
	if counts[2] <= counts[0] {
		t.Errorf("weight 35 picked %d times, weight 15 picked %d times", counts[2], counts[0])
	}
}

func TestEarliestRoundTakesFirstDayOnly(t *testing.T) {
	day1 := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	matches := []*models.Match{
		{ID: 1, KickoffAt: day1},
		{ID: 2, KickoffAt: day1.Add(2 * time.Hour)},
		{ID: 3, KickoffAt: day2},
		{ID: 4, KickoffAt: day2.Add(time.Hour)},
	}

	day, round := earliestRound(matches)
	if want := day1.Truncate(24 * time.Hour); !day.Equal(want) {
		t.Errorf("day = %v, want %v", day, want)
	}
	if len(round) != 2 || round[0].ID != 1 || round[1].ID != 2 {
		ids := make([]int, len(round))
		for i, m := range round {
			ids[i] = m.ID
		}
		t.Errorf("round match ids = %v, want [1 2]", ids)
	}
}

func TestRoundStagesListsDistinctLabels(t *testing.T) {
	day := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)
	matches := []*models.Match{
		{ID: 1, Stage: models.GroupStage("Group A", 1), KickoffAt: day},
		{ID: 2, Stage: models.GroupStage("Group B", 1), KickoffAt: day},
		{ID: 3, Stage: models.GroupStage("Group A", 1), KickoffAt: day.Add(time.Hour)},
	}

	stages := roundStages(matches)
	want := []string{"Group A - Round 1", "Group B - Round 1"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, stages[i], want[i])
		}
	}
}
