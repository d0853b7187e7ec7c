package notify

import (
	"context"
	"time"
)

// Kind classifies the failure a notification reports.
type Kind string

const (
	KindConnectionError Kind = "connection_error"
	KindMessageError    Kind = "message_error"
	KindEvaluationError Kind = "evaluation_error"
)

// VariantDestructive marks a notice that reports a failure.
const VariantDestructive = "destructive"

// Notification is a short-lived, dismissible notice shown to the user.
type Notification struct {
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sink receives notifications. Implementations must not block for long and must never panic.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, n Notification)

// Notify implements Sink.
func (f SinkFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// ConnectionError is raised when a session could not be started.
func ConnectionError() Notification {
	return Notification{
		Kind:        KindConnectionError,
		Title:       "Connection Error",
		Description: "Could not connect to the server. Make sure the backend is running.",
		Variant:     VariantDestructive,
	}
}

// MessageError is raised when a chat turn could not be delivered.
func MessageError() Notification {
	return Notification{
		Kind:        KindMessageError,
		Title:       "Message Error",
		Description: "Could not send message. Please try again.",
		Variant:     VariantDestructive,
	}
}

// EvaluationError is raised when the evaluation could not be fetched.
func EvaluationError() Notification {
	return Notification{
		Kind:        KindEvaluationError,
		Title:       "Evaluation Error",
		Description: "Could not get evaluation. Please try again.",
		Variant:     VariantDestructive,
	}
}
