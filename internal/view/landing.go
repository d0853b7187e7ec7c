package view

import (
	"io"
	"strings"

	"github.com/noah-isme/reverse-tutor/internal/models"
)

// LandingProps feeds the landing screen.
type LandingProps struct {
	Loading bool
}

// Landing invites the user to start teaching.
type Landing struct {
	Props LandingProps
}

var features = [][2]string{
	{"Teach Any Topic", "Choose any subject you want to master through teaching"},
	{"AI Student", "An intelligent student that asks clarifying questions"},
	{"Get Evaluated", "Receive detailed feedback on your teaching ability"},
}

func (l Landing) Render(w io.Writer) error {
	out := &errWriter{w: w}
	out.line("== Reverse Tutor ==")
	out.line("The best way to learn is to teach. Explain concepts to an AI student")
	out.line("and discover how well you truly understand them.")
	out.line()
	for _, feature := range features {
		out.line("  * ", feature[0], ": ", feature[1])
	}
	out.line()
	if out.err != nil {
		return out.err
	}
	return l.RenderStatus(w)
}

// RenderStatus writes the busy indicator, if any.
func (l Landing) RenderStatus(w io.Writer) error {
	out := &errWriter{w: w}
	if l.Props.Loading {
		out.line("Starting...")
	}
	return out.err
}

func (l Landing) Hint() string {
	return "Press Enter (or type 'start') to start teaching; 'start <topic> | <difficulty> | <objective>' to brief the student; 'quit' to exit."
}

// Interpret accepts "start", an empty line, or "start topic | difficulty | objective".
func (l Landing) Interpret(line string) (Intent, bool) {
	if isQuit(line) {
		return Intent{Kind: IntentQuit}, true
	}
	if l.Props.Loading {
		return Intent{}, false
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.EqualFold(trimmed, "start") {
		return Intent{Kind: IntentStartTeaching}, true
	}

	if len(trimmed) > len("start ") && strings.EqualFold(trimmed[:len("start ")], "start ") {
		brief, ok := parseBrief(trimmed[len("start "):])
		if !ok {
			return Intent{}, false
		}
		return Intent{Kind: IntentStartTeaching, Brief: brief}, true
	}

	return Intent{}, false
}

func parseBrief(raw string) (*models.Brief, bool) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return nil, false
	}
	difficulty, ok := models.ParseDifficulty(parts[1])
	if !ok {
		return nil, false
	}
	brief := &models.Brief{
		Topic:      strings.TrimSpace(parts[0]),
		Difficulty: difficulty,
		Objective:  strings.TrimSpace(parts[2]),
	}
	if brief.Topic == "" || brief.Objective == "" {
		return nil, false
	}
	return brief, true
}
