package session

import "github.com/noah-isme/reverse-tutor/internal/models"

// State is the screen-level state of a teaching episode. Each variant carries only the data valid for it.
type State interface {
	AppState() models.AppState
	isState()
}

// Landing is the initial state: no session, no transcript, no evaluation.
type Landing struct{}

// Chat is an active session.
type Chat struct {
	SessionID string
	Messages  []models.Message
}

// Evaluated is a finished session with its verdict.
type Evaluated struct {
	SessionID  string
	Messages   []models.Message
	Evaluation models.Evaluation
}

func (Landing) AppState() models.AppState   { return models.StateLanding }
func (Chat) AppState() models.AppState      { return models.StateChat }
func (Evaluated) AppState() models.AppState { return models.StateEvaluation }

func (Landing) isState()   {}
func (Chat) isState()      {}
func (Evaluated) isState() {}

// Activity is the single busy flag of the controller; at most one operation is outstanding.
type Activity int

const (
	ActivityIdle Activity = iota
	ActivityStarting
	ActivitySending
	ActivityEnding
)

func (a Activity) String() string {
	switch a {
	case ActivityStarting:
		return "starting"
	case ActivitySending:
		return "sending"
	case ActivityEnding:
		return "ending"
	default:
		return "idle"
	}
}

// Snapshot is an immutable copy of the controller state handed to views.
type Snapshot struct {
	State      models.AppState
	SessionID  string
	Messages   []models.Message
	Evaluation *models.Evaluation
	Activity   Activity
}

// IsLoading reports a start or chat call in flight.
func (s Snapshot) IsLoading() bool {
	return s.Activity == ActivityStarting || s.Activity == ActivitySending
}

// IsEnding reports an end-teaching call in flight.
func (s Snapshot) IsEnding() bool {
	return s.Activity == ActivityEnding
}

// HasSession reports whether a session identifier is held.
func (s Snapshot) HasSession() bool {
	return s.SessionID != ""
}

func snapshotOf(state State, activity Activity) Snapshot {
	snap := Snapshot{State: state.AppState(), Activity: activity, Messages: []models.Message{}}
	switch st := state.(type) {
	case Chat:
		snap.SessionID = st.SessionID
		snap.Messages = cloneMessages(st.Messages)
	case Evaluated:
		snap.SessionID = st.SessionID
		snap.Messages = cloneMessages(st.Messages)
		eval := st.Evaluation.Clone()
		snap.Evaluation = &eval
	}
	return snap
}

func cloneMessages(messages []models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	copy(out, messages)
	return out
}

func appendMessage(messages []models.Message, message models.Message) []models.Message {
	out := make([]models.Message, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, message)
}
