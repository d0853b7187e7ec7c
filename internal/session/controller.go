package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/reverse-tutor/internal/models"
	"github.com/noah-isme/reverse-tutor/internal/notify"
	"github.com/noah-isme/reverse-tutor/internal/observability"
	"github.com/noah-isme/reverse-tutor/pkg/tutorapi"
)

// Transport is the remote tutor service as the controller sees it.
type Transport interface {
	Start(ctx context.Context, brief *models.Brief) (tutorapi.StartResult, error)
	Chat(ctx context.Context, sessionID, message string) (string, error)
	EndTeaching(ctx context.Context, sessionID string) (models.Evaluation, error)
}

// Controller owns the session state and is the only component that mutates it.
//
// Every outstanding request records the generation it was issued in. StartNew advances the generation,
// so a response that arrives after a reset is dropped instead of being applied to the new state.
// Failures never escape: they are logged and reported through the notification sink.
type Controller struct {
	mu         sync.Mutex
	state      State
	activity   Activity
	generation uint64

	emitMu    sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int

	transport Transport
	notifier  notify.Sink
	logger    zerolog.Logger
}

// NewController builds a controller in the landing state.
func NewController(transport Transport, notifier notify.Sink, logger zerolog.Logger) *Controller {
	if notifier == nil {
		notifier = notify.SinkFunc(func(context.Context, notify.Notification) {})
	}

	return &Controller{
		state:     Landing{},
		observers: make(map[int]func(Snapshot)),
		transport: transport,
		notifier:  notifier,
		logger:    logger.With().Str("component", "session_controller").Logger(),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotOf(c.state, c.activity)
}

// Subscribe registers fn to be called with a fresh snapshot after every change. fn must not call back
// into the controller's operations.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn

	return func() {
		c.emitMu.Lock()
		defer c.emitMu.Unlock()
		delete(c.observers, id)
	}
}

// StartSession opens a session without a brief.
func (c *Controller) StartSession(ctx context.Context) {
	c.StartSessionWithBrief(ctx, nil)
}

// StartSessionWithBrief opens a session, optionally describing what will be taught. It only acts from the
// landing screen.
func (c *Controller) StartSessionWithBrief(ctx context.Context, brief *models.Brief) {
	c.mu.Lock()
	if _, ok := c.state.(Landing); !ok || c.activity != ActivityIdle {
		c.mu.Unlock()
		c.logger.Debug().Msg("start session ignored")
		return
	}
	c.activity = ActivityStarting
	generation := c.generation
	c.mu.Unlock()
	c.emit()

	result, err := c.transport.Start(ctx, brief)

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		c.discard(tutorapi.OpStart)
		return
	}
	c.activity = ActivityIdle
	if err != nil {
		c.mu.Unlock()
		c.logger.Error().Err(err).Msg("error starting session")
		c.notifier.Notify(ctx, notify.ConnectionError())
		c.emit()
		return
	}
	c.state = Chat{SessionID: result.SessionID}
	c.mu.Unlock()

	c.logger.Info().Str("session_id", result.SessionID).Msg("teaching session started")
	transitioned(models.StateLanding, models.StateChat)
	c.emit()
}

// SendMessage appends content to the transcript at once and then asks the service for a reply. If the call
// fails the optimistic entry is removed again. Without a session the call does nothing.
func (c *Controller) SendMessage(ctx context.Context, content string) {
	c.mu.Lock()
	chat, ok := c.state.(Chat)
	if !ok || chat.SessionID == "" || c.activity != ActivityIdle {
		c.mu.Unlock()
		c.logger.Debug().Msg("send message ignored")
		return
	}
	chat.Messages = appendMessage(chat.Messages, models.Message{Role: models.RoleUser, Content: content})
	c.state = chat
	c.activity = ActivitySending
	generation := c.generation
	c.mu.Unlock()
	c.emit()

	reply, err := c.transport.Chat(ctx, chat.SessionID, content)

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		c.discard(tutorapi.OpChat)
		return
	}
	c.activity = ActivityIdle
	current, ok := c.state.(Chat)
	if !ok {
		c.mu.Unlock()
		c.emit()
		return
	}
	if err != nil {
		if n := len(current.Messages); n > 0 {
			current.Messages = cloneMessages(current.Messages[:n-1])
		}
		c.state = current
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("session_id", current.SessionID).Msg("error sending message")
		c.notifier.Notify(ctx, notify.MessageError())
		c.emit()
		return
	}
	current.Messages = appendMessage(current.Messages, models.Message{Role: models.RoleAssistant, Content: reply})
	c.state = current
	c.mu.Unlock()
	c.emit()
}

// EndTeaching closes the session and fetches its evaluation. Without a session the call does nothing.
func (c *Controller) EndTeaching(ctx context.Context) {
	c.mu.Lock()
	chat, ok := c.state.(Chat)
	if !ok || chat.SessionID == "" || c.activity != ActivityIdle {
		c.mu.Unlock()
		c.logger.Debug().Msg("end teaching ignored")
		return
	}
	c.activity = ActivityEnding
	generation := c.generation
	c.mu.Unlock()
	c.emit()

	eval, err := c.transport.EndTeaching(ctx, chat.SessionID)

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		c.discard(tutorapi.OpEndTeaching)
		return
	}
	c.activity = ActivityIdle
	current, ok := c.state.(Chat)
	if !ok {
		c.mu.Unlock()
		c.emit()
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("session_id", current.SessionID).Msg("error ending session")
		c.notifier.Notify(ctx, notify.EvaluationError())
		c.emit()
		return
	}
	c.state = Evaluated{SessionID: current.SessionID, Messages: current.Messages, Evaluation: eval.Clone()}
	c.mu.Unlock()

	c.logger.Info().Str("session_id", current.SessionID).Int("score", eval.Score).Msg("teaching session evaluated")
	transitioned(models.StateChat, models.StateEvaluation)
	c.emit()
}

// StartNew discards the session and returns to the landing screen. Outstanding requests are orphaned.
func (c *Controller) StartNew() {
	c.mu.Lock()
	from := c.state.AppState()
	c.state = Landing{}
	c.activity = ActivityIdle
	c.generation++
	c.mu.Unlock()

	if from != models.StateLanding {
		transitioned(from, models.StateLanding)
	}
	c.emit()
}

func (c *Controller) discard(op tutorapi.Operation) {
	observability.StaleResponses().WithLabelValues(string(op)).Inc()
	c.logger.Debug().Str("operation", string(op)).Msg("dropping response for abandoned session")
}

func (c *Controller) emit() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if len(c.observers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.observers {
		fn(snap)
	}
}

func transitioned(from, to models.AppState) {
	observability.Transitions().WithLabelValues(string(from), string(to)).Inc()
}
