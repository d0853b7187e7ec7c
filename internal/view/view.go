// Package view renders the three screens of the tutor client as text and turns typed lines into intents.
package view

import (
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/reverse-tutor/internal/models"
	"github.com/noah-isme/reverse-tutor/internal/session"
)

// IntentKind names what the user asked for.
type IntentKind int

const (
	IntentStartTeaching IntentKind = iota + 1
	IntentSendMessage
	IntentEndTeaching
	IntentStartNew
	IntentQuit
)

// Intent is an event emitted by a screen.
type Intent struct {
	Kind    IntentKind
	Content string
	Brief   *models.Brief
}

// Screen is the contract every view fulfils: props in through its fields, intents out through Interpret.
type Screen interface {
	Render(w io.Writer) error
	// Interpret maps one line of input to an intent. It reports false when the line is not actionable in the
	// current props, which is how views disable their controls.
	Interpret(line string) (Intent, bool)
	// Hint is a one-line prompt describing the accepted input.
	Hint() string
}

// StatusRenderer is implemented by screens that show a busy indicator while a call is outstanding.
type StatusRenderer interface {
	RenderStatus(w io.Writer) error
}

// ForSnapshot selects the screen for the controller state.
func ForSnapshot(snap session.Snapshot) Screen {
	switch snap.State {
	case models.StateChat:
		return Chat{Props: ChatProps{Messages: snap.Messages, Loading: snap.IsLoading(), Ending: snap.IsEnding()}}
	case models.StateEvaluation:
		if snap.Evaluation != nil {
			return Evaluation{Props: EvaluationProps{Evaluation: *snap.Evaluation}}
		}
	}
	return Landing{Props: LandingProps{Loading: snap.IsLoading()}}
}

var textPolicy = bluemonday.StrictPolicy()

// plain strips markup from service-provided text for terminal output.
func plain(text string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(text)))
}

func isQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/quit", "quit", "/exit", "exit":
		return true
	}
	return false
}

// errWriter keeps the first write error so renderers can write line by line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) line(parts ...string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, strings.Join(parts, "")+"\n")
}
