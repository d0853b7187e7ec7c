package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/reverse-tutor/internal/models"
)

// EvaluationProps feeds the evaluation screen.
type EvaluationProps struct {
	Evaluation models.Evaluation
}

// Evaluation presents the verdict on the session.
type Evaluation struct {
	Props EvaluationProps
}

type section struct {
	title string
	items []string
}

func (e Evaluation) sections() []section {
	eval := e.Props.Evaluation
	return []section{
		{title: "Strengths", items: eval.Strengths},
		{title: "Areas for Improvement", items: eval.Weaknesses},
		{title: "Missed Concepts", items: eval.MissedConcepts},
		{title: "Suggestions", items: eval.Suggestions},
		{title: "Questions to Explore", items: eval.FollowUpQuestions},
	}
}

func (e Evaluation) Render(w io.Writer) error {
	eval := e.Props.Evaluation
	stars := eval.Stars()

	out := &errWriter{w: w}
	out.line("== Teaching Complete! ==")
	out.line("Here's how you did as a teacher")
	out.line()
	out.line(strings.Repeat("*", stars), strings.Repeat(".", 5-stars))
	out.line(fmt.Sprintf("Score: %d (%s)", eval.Score, eval.Tier()))
	out.line(eval.Label())

	for _, s := range e.sections() {
		if len(s.items) == 0 {
			continue
		}
		out.line()
		out.line(s.title)
		for _, item := range s.items {
			out.line("  - ", plain(item))
		}
	}
	return out.err
}

func (e Evaluation) Hint() string {
	return "Press Enter (or type 'new') to teach again; 'quit' to exit."
}

// Interpret accepts "new" or an empty line to start over.
func (e Evaluation) Interpret(line string) (Intent, bool) {
	if isQuit(line) {
		return Intent{Kind: IntentQuit}, true
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "new", "/new", "again":
		return Intent{Kind: IntentStartNew}, true
	}
	return Intent{}, false
}
