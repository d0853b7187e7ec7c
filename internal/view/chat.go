package view

import (
	"io"
	"strings"

	"github.com/noah-isme/reverse-tutor/internal/models"
)

// MinMessagesToEnd is how many transcript entries must exist before teaching can be ended.
const MinMessagesToEnd = 2

// ChatProps feeds the chat screen.
type ChatProps struct {
	Messages []models.Message
	Loading  bool
	Ending   bool
}

// Chat shows the running transcript.
type Chat struct {
	Props ChatProps
}

func (c Chat) Render(w io.Writer) error {
	out := &errWriter{w: w}
	out.line("== Reverse Tutor == Teaching session in progress")

	if len(c.Props.Messages) == 0 {
		out.line()
		out.line("Welcome, Teacher!")
		out.line("Start teaching any topic you want to master. I'm your curious student ready to learn!")
	}

	if out.err != nil {
		return out.err
	}
	if err := c.RenderMessages(w); err != nil {
		return err
	}
	return c.RenderStatus(w)
}

// RenderStatus writes the thinking or evaluating indicator, if any.
func (c Chat) RenderStatus(w io.Writer) error {
	out := &errWriter{w: w}
	if c.Props.Loading {
		out.line()
		out.line("[student] ...")
	}
	if c.Props.Ending {
		out.line()
		out.line("Evaluating...")
	}
	return out.err
}

// RenderMessages writes only the transcript entries.
func (c Chat) RenderMessages(w io.Writer) error {
	out := &errWriter{w: w}
	for _, message := range c.Props.Messages {
		out.line()
		if message.Role == models.RoleUser {
			out.line("[teacher] ", message.Content)
		} else {
			out.line("[student] ", plain(message.Content))
		}
	}
	return out.err
}

func (c Chat) Hint() string {
	if c.CanEnd() {
		return "Type your explanation and press Enter; '/end' to finish and get evaluated."
	}
	return "Type your explanation and press Enter."
}

// CanEnd reports whether the end-teaching control is enabled.
func (c Chat) CanEnd() bool {
	return !c.Props.Ending && len(c.Props.Messages) >= MinMessagesToEnd
}

// Interpret turns free text into a chat turn and "/end" into an end-teaching request.
func (c Chat) Interpret(line string) (Intent, bool) {
	if isQuit(line) {
		return Intent{Kind: IntentQuit}, true
	}

	trimmed := strings.TrimSpace(line)
	if strings.EqualFold(trimmed, "/end") {
		if !c.CanEnd() {
			return Intent{}, false
		}
		return Intent{Kind: IntentEndTeaching}, true
	}

	if trimmed == "" || c.Props.Loading {
		return Intent{}, false
	}
	return Intent{Kind: IntentSendMessage, Content: trimmed}, true
}
