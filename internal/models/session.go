package models

import "strings"

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn in a teaching transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AppState names the screen the client is currently showing.
type AppState string

const (
	StateLanding    AppState = "landing"
	StateChat       AppState = "chat"
	StateEvaluation AppState = "evaluation"
)

// Difficulty is the level a teaching brief targets.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty maps free text onto a known difficulty.
func ParseDifficulty(value string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(value))) {
	case DifficultyBeginner:
		return DifficultyBeginner, true
	case DifficultyIntermediate:
		return DifficultyIntermediate, true
	case DifficultyAdvanced:
		return DifficultyAdvanced, true
	}
	return "", false
}

// Brief describes what the user intends to teach. It is optional when starting a session.
type Brief struct {
	Topic      string     `json:"topic" validate:"required,min=3"`
	Difficulty Difficulty `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Objective  string     `json:"objective" validate:"required,min=10"`
}
