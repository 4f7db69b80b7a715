package models

// Level is a user's progress rank, advanced by total completions
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelExpert       Level = "Expert"
)

// TierProgress is the completion aggregate of a single tier
type TierProgress struct {
	Tier           Difficulty `json:"tier"`
	CompletedCount int        `json:"completedCount"`
	TotalCount     int        `json:"totalCount"`
	Percentage     float64    `json:"percentage"`
}

// LevelStanding describes how far a user is from the next level.
// Next is nil when Current is terminal.
type LevelStanding struct {
	Current   Level  `json:"current"`
	Next      *Level `json:"next"`
	Required  int    `json:"required"`
	Completed int    `json:"completed"`
	Remaining int    `json:"remaining"`
}

// Summary is the global progress aggregate shown on the landing view
type Summary struct {
	CompletedCount int            `json:"completedCount"`
	TotalCount     int            `json:"totalCount"`
	Percentage     float64        `json:"percentage"`
	Level          Level          `json:"level"`
	Standing       LevelStanding  `json:"standing"`
	Tiers          []TierProgress `json:"tiers"`
}

// Completion is the completion state of one project
type Completion struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}
