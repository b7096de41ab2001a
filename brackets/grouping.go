package brackets

import (
	"fmt"

	"github.com/pitchside/tournament-engine/models"
)

// Group is an ephemeral slice of a tournament's roster. Groups are never
// persisted: they are recomputed from the registered team list whenever
// needed, so the split below must be fully deterministic in the input
// order and count.
type Group struct {
	Name  string
	Teams []*models.Team
}

// SplitIntoGroups partitions teams into balanced named groups:
// fewer than 16 teams play in 2 groups, 16 or more in 4. Teams are
// sliced contiguously in input order; the first len(teams)%groups groups
// take one extra team, so group sizes never differ by more than one.
func SplitIntoGroups(teams []*models.Team) []Group {
	if len(teams) == 0 {
		return nil
	}

	groupCount := 2
	if len(teams) >= 16 {
		groupCount = 4
	}

	perGroup := len(teams) / groupCount
	remainder := len(teams) % groupCount

	groups := make([]Group, 0, groupCount)
	start := 0
	for i := 0; i < groupCount; i++ {
		size := perGroup
		if i < remainder {
			size++
		}
		groups = append(groups, Group{
			Name:  fmt.Sprintf("Group %c", 'A'+i),
			Teams: teams[start : start+size],
		})
		start += size
	}
	return groups
}
