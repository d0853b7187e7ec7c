// Package console drives the tutor screens from line-based terminal input.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/reverse-tutor/internal/models"
	"github.com/noah-isme/reverse-tutor/internal/session"
	"github.com/noah-isme/reverse-tutor/internal/view"
)

// Controller is the part of the session controller the console drives.
type Controller interface {
	Snapshot() session.Snapshot
	StartSessionWithBrief(ctx context.Context, brief *models.Brief)
	SendMessage(ctx context.Context, content string)
	EndTeaching(ctx context.Context)
	StartNew()
	Subscribe(fn func(session.Snapshot)) func()
}

// App reads one intent per line, dispatches it and redraws what changed.
type App struct {
	ctrl   Controller
	in     io.Reader
	out    io.Writer
	logger zerolog.Logger

	mu           sync.Mutex
	lastState    models.AppState
	lastActivity session.Activity
	printed      int
}

// New builds a console app. out should be shared with any WriterSink so toasts land on the same terminal.
func New(ctrl Controller, in io.Reader, out io.Writer, logger zerolog.Logger) *App {
	return &App{
		ctrl:   ctrl,
		in:     in,
		out:    out,
		logger: logger.With().Str("component", "console").Logger(),
	}
}

// Run processes input until EOF, a quit intent or ctx cancellation. Output follows controller changes,
// including the busy indicators shown while a call is outstanding.
func (a *App) Run(ctx context.Context) error {
	a.redraw(a.ctrl.Snapshot(), true)
	unsubscribe := a.ctrl.Subscribe(func(snap session.Snapshot) {
		a.redraw(snap, false)
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	lines, errc := a.read(done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}

			screen := view.ForSnapshot(a.ctrl.Snapshot())
			intent, valid := screen.Interpret(line)
			if !valid {
				a.printf("%s\n> ", screen.Hint())
				continue
			}
			if intent.Kind == view.IntentQuit {
				a.logger.Debug().Msg("quit requested")
				return nil
			}

			a.dispatch(ctx, intent)
		}
	}
}

// read feeds input lines one at a time so a blocked read never delays cancellation.
func (a *App) read(done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

func (a *App) dispatch(ctx context.Context, intent view.Intent) {
	switch intent.Kind {
	case view.IntentStartTeaching:
		a.ctrl.StartSessionWithBrief(ctx, intent.Brief)
	case view.IntentSendMessage:
		a.ctrl.SendMessage(ctx, intent.Content)
	case view.IntentEndTeaching:
		a.ctrl.EndTeaching(ctx)
	case view.IntentStartNew:
		a.ctrl.StartNew()
	}
}

// redraw prints a full screen on state changes. Within a screen it prints only new transcript entries, the
// busy indicator when a call starts and the prompt once it settles.
func (a *App) redraw(snap session.Snapshot, force bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	screen := view.ForSnapshot(snap)
	activityChanged := snap.Activity != a.lastActivity
	a.lastActivity = snap.Activity

	if force || snap.State != a.lastState {
		a.lastState = snap.State
		a.printed = len(snap.Messages)
		if err := screen.Render(a.out); err != nil {
			a.logger.Warn().Err(err).Msg("failed to render screen")
		}
		if snap.Activity == session.ActivityIdle {
			a.hint(screen)
		}
		return
	}

	if snap.State == models.StateChat && len(snap.Messages) > a.printed {
		fresh := view.Chat{Props: view.ChatProps{Messages: snap.Messages[a.printed:]}}
		if err := fresh.RenderMessages(a.out); err != nil {
			a.logger.Warn().Err(err).Msg("failed to render messages")
		}
	}
	a.printed = len(snap.Messages)

	if !activityChanged {
		return
	}
	if snap.Activity != session.ActivityIdle {
		if status, ok := screen.(view.StatusRenderer); ok {
			if err := status.RenderStatus(a.out); err != nil {
				a.logger.Warn().Err(err).Msg("failed to render status")
			}
		}
		return
	}
	a.hint(screen)
}

func (a *App) hint(screen view.Screen) {
	_, _ = fmt.Fprintf(a.out, "\n%s\n> ", screen.Hint())
}

func (a *App) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = fmt.Fprintf(a.out, format, args...)
}
