package progress

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terra-clan/explorers-hub/internal/models"
)

// ErrUnknownLevel is returned for level names outside the level table
var ErrUnknownLevel = errors.New("unknown level")

type levelRule struct {
	next     models.Level
	required int // total completions needed to reach next
}

// levelOrder lists levels from lowest to highest
var levelOrder = []models.Level{
	models.LevelBeginner,
	models.LevelIntermediate,
	models.LevelAdvanced,
	models.LevelExpert,
}

// levelTable is exhaustive over levelOrder; Expert is terminal.
var levelTable = map[models.Level]*levelRule{
	models.LevelBeginner:     {next: models.LevelIntermediate, required: 3},
	models.LevelIntermediate: {next: models.LevelAdvanced, required: 6},
	models.LevelAdvanced:     {next: models.LevelExpert, required: 9},
	models.LevelExpert:       nil,
}

// ParseLevel resolves a level name case-insensitively
func ParseLevel(name string) (models.Level, error) {
	for _, l := range levelOrder {
		if strings.EqualFold(string(l), strings.TrimSpace(name)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

// Standing reports how many more completions are needed to leave level.
func Standing(completed int, level models.Level) (models.LevelStanding, error) {
	rule, ok := levelTable[level]
	if !ok {
		return models.LevelStanding{}, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	standing := models.LevelStanding{
		Current:   level,
		Completed: completed,
	}
	if rule == nil {
		return standing, nil
	}

	next := rule.next
	standing.Next = &next
	standing.Required = rule.required
	standing.Remaining = max(rule.required-completed, 0)
	return standing, nil
}

// LevelFor returns the highest level whose threshold completed has reached
func LevelFor(completed int) models.Level {
	current := models.LevelBeginner
	for _, l := range levelOrder {
		rule := levelTable[l]
		if rule == nil || completed < rule.required {
			break
		}
		current = rule.next
	}
	return current
}
