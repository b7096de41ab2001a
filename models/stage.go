package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// StageKind tags which phase of a tournament a match belongs to.
type StageKind string

const (
	StageLeague   StageKind = "league"
	StageGroup    StageKind = "group"
	StageKnockout StageKind = "knockout"
)

// Stage identifies a match's group and/or round explicitly. Earlier
// versions of this system encoded the same information in a free-text
// pitch label ("Group A - Round 3", "Quarter-Finals"); all lookups here
// are plain field comparisons instead of substring matching.
type Stage struct {
	Kind  StageKind `json:"kind" db:"stage_kind"`
	Group string    `json:"group,omitempty" db:"stage_group"` // "Group A", group stage only
	Round int       `json:"round,omitempty" db:"stage_round"` // 1-based, league and group stages
	Label string    `json:"label,omitempty" db:"stage_label"` // "Round 1", "Semi-Finals", knockout only
}

func LeagueStage(round int) Stage {
	return Stage{Kind: StageLeague, Round: round}
}

func GroupStage(group string, round int) Stage {
	return Stage{Kind: StageGroup, Group: group, Round: round}
}

func KnockoutStage(label string) Stage {
	return Stage{Kind: StageKnockout, Label: label}
}

func (s Stage) IsGroup() bool    { return s.Kind == StageGroup }
func (s Stage) IsKnockout() bool { return s.Kind == StageKnockout }

// IsFinal reports whether this is the terminal bracket round. The check
// is exact (case-insensitive, trimmed): "Final" is a substring of other
// labels such as "Quarter-Finals" and must never match those.
func (s Stage) IsFinal() bool {
	return s.Kind == StageKnockout && strings.EqualFold(strings.TrimSpace(s.Label), FinalLabel)
}

// String renders the legacy pitch label for display.
func (s Stage) String() string {
	switch s.Kind {
	case StageGroup:
		return fmt.Sprintf("%s - Round %d", s.Group, s.Round)
	case StageKnockout:
		return s.Label
	case StageLeague:
		return fmt.Sprintf("Round %d", s.Round)
	}
	return ""
}

// Knockout round labels, keyed by the number of teams entering the round.
const (
	FinalLabel         = "Final"
	SemiFinalsLabel    = "Semi-Finals"
	QuarterFinalsLabel = "Quarter-Finals"
	RoundOf16Label     = "Round of 16"
)

var (
	groupStagePattern = regexp.MustCompile(`^(Group\s+[A-Z])\s*-\s*Round\s+(\d+)$`)
	roundPattern      = regexp.MustCompile(`^Round\s+(\d+)$`)
)

// ParseStage converts a legacy pitch label back into a tagged stage.
// Used for importing fixtures recorded by the previous system; bare
// "Round N" labels are ambiguous there and are treated as knockout
// rounds, matching how the old data used them.
func ParseStage(label string) (Stage, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return Stage{}, fmt.Errorf("empty stage label")
	}
	if m := groupStagePattern.FindStringSubmatch(trimmed); m != nil {
		round, err := strconv.Atoi(m[2])
		if err != nil {
			return Stage{}, fmt.Errorf("invalid round in stage label %q: %w", label, err)
		}
		return GroupStage(m[1], round), nil
	}
	switch {
	case strings.EqualFold(trimmed, FinalLabel),
		strings.EqualFold(trimmed, SemiFinalsLabel),
		strings.EqualFold(trimmed, QuarterFinalsLabel),
		strings.EqualFold(trimmed, RoundOf16Label):
		return KnockoutStage(trimmed), nil
	}
	if roundPattern.MatchString(trimmed) {
		return KnockoutStage(trimmed), nil
	}
	return Stage{}, fmt.Errorf("unrecognized stage label %q", label)
}
