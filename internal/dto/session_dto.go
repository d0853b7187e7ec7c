package dto

import (
	"math"
	"strings"

	"github.com/noah-isme/reverse-tutor/internal/models"
)

// StartSessionRequest is the optional body of a session start call.
type StartSessionRequest struct {
	Topic      string `json:"topic" validate:"required,min=3"`
	Difficulty string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Objective  string `json:"objective" validate:"required,min=10"`
}

// SessionSummary echoes the brief the service accepted.
type SessionSummary struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Objective  string `json:"objective"`
}

// StartSessionResponse is returned by the service once a session exists.
type StartSessionResponse struct {
	SessionID string          `json:"session_id" validate:"required"`
	Message   string          `json:"message,omitempty"`
	Session   *SessionSummary `json:"session,omitempty"`
}

// ChatRequest carries one teacher turn.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required,min=1"`
}

// ChatResponse carries the simulated student's reply. Older deployments name the field ai_message.
type ChatResponse struct {
	Response  string `json:"response"`
	AIMessage string `json:"ai_message,omitempty"`
}

// Reply returns whichever reply field the service populated.
func (r ChatResponse) Reply() string {
	if strings.TrimSpace(r.Response) != "" {
		return r.Response
	}
	return r.AIMessage
}

// EvaluationResponse is the end-of-session payload.
type EvaluationResponse struct {
	Score             float64  `json:"score"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	MissedConcepts    []string `json:"missed_concepts,omitempty"`
	Suggestions       []string `json:"suggestions"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// ErrorResponse is the body the service returns on failures.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// NewStartSessionRequest converts a brief into its wire form. A nil brief yields nil.
func NewStartSessionRequest(brief *models.Brief) *StartSessionRequest {
	if brief == nil {
		return nil
	}
	return &StartSessionRequest{
		Topic:      strings.TrimSpace(brief.Topic),
		Difficulty: string(brief.Difficulty),
		Objective:  strings.TrimSpace(brief.Objective),
	}
}

// ToModel converts the payload into an Evaluation.
func (r EvaluationResponse) ToModel() models.Evaluation {
	return models.Evaluation{
		Score:             int(math.Round(r.Score)),
		Strengths:         nonNil(r.Strengths),
		Weaknesses:        nonNil(r.Weaknesses),
		MissedConcepts:    nonNil(r.MissedConcepts),
		Suggestions:       nonNil(r.Suggestions),
		FollowUpQuestions: nonNil(r.FollowUpQuestions),
	}
}

// NewEvaluationResponse converts a model into its wire form.
func NewEvaluationResponse(eval models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		Score:             float64(eval.Score),
		Strengths:         nonNil(eval.Strengths),
		Weaknesses:        nonNil(eval.Weaknesses),
		MissedConcepts:    eval.MissedConcepts,
		Suggestions:       nonNil(eval.Suggestions),
		FollowUpQuestions: nonNil(eval.FollowUpQuestions),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
