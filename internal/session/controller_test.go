package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reverse-tutor/internal/models"
	"github.com/noah-isme/reverse-tutor/internal/notify"
	"github.com/noah-isme/reverse-tutor/pkg/tutorapi"
)

var errNetwork = errors.New("network fault")

type stubTransport struct {
	mu      sync.Mutex
	calls   []string
	startFn func(ctx context.Context, brief *models.Brief) (tutorapi.StartResult, error)
	chatFn  func(ctx context.Context, sessionID, message string) (string, error)
	endFn   func(ctx context.Context, sessionID string) (models.Evaluation, error)
}

func (s *stubTransport) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubTransport) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *stubTransport) Start(ctx context.Context, brief *models.Brief) (tutorapi.StartResult, error) {
	s.record("start")
	if s.startFn != nil {
		return s.startFn(ctx, brief)
	}
	return tutorapi.StartResult{SessionID: "abc"}, nil
}

func (s *stubTransport) Chat(ctx context.Context, sessionID, message string) (string, error) {
	s.record("chat")
	if s.chatFn != nil {
		return s.chatFn(ctx, sessionID, message)
	}
	return "Why does it pull things?", nil
}

func (s *stubTransport) EndTeaching(ctx context.Context, sessionID string) (models.Evaluation, error) {
	s.record("end_teaching")
	if s.endFn != nil {
		return s.endFn(ctx, sessionID)
	}
	return sampleEvaluation(), nil
}

type notificationRecorder struct {
	mu   sync.Mutex
	seen []notify.Notification
}

func (r *notificationRecorder) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *notificationRecorder) Kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, 0, len(r.seen))
	for _, n := range r.seen {
		out = append(out, n.Kind)
	}
	return out
}

func sampleEvaluation() models.Evaluation {
	return models.Evaluation{
		Score:             85,
		Strengths:         []string{"clear"},
		Weaknesses:        []string{},
		Suggestions:       []string{"add examples"},
		FollowUpQuestions: []string{"what about friction?"},
	}
}

func newTestController(transport Transport) (*Controller, *notificationRecorder) {
	recorder := &notificationRecorder{}
	return NewController(transport, recorder, zerolog.Nop()), recorder
}

func requireInitial(t *testing.T, snap Snapshot) {
	t.Helper()
	require.Equal(t, models.StateLanding, snap.State)
	require.Empty(t, snap.SessionID)
	require.Empty(t, snap.Messages)
	require.Nil(t, snap.Evaluation)
	require.Equal(t, ActivityIdle, snap.Activity)
}

func TestInitialState(t *testing.T) {
	ctrl, _ := newTestController(&stubTransport{})
	requireInitial(t, ctrl.Snapshot())
}

func TestStartSessionSuccess(t *testing.T) {
	transport := &stubTransport{}
	ctrl, recorder := newTestController(transport)

	ctrl.StartSession(context.Background())

	snap := ctrl.Snapshot()
	require.Equal(t, models.StateChat, snap.State)
	require.Equal(t, "abc", snap.SessionID)
	require.Empty(t, snap.Messages)
	require.False(t, snap.IsLoading())
	require.Empty(t, recorder.Kinds())
}

func TestStartSessionFailureStaysOnLanding(t *testing.T) {
	transport := &stubTransport{startFn: func(context.Context, *models.Brief) (tutorapi.StartResult, error) {
		return tutorapi.StartResult{}, errNetwork
	}}
	ctrl, recorder := newTestController(transport)

	ctrl.StartSession(context.Background())

	requireInitial(t, ctrl.Snapshot())
	require.Equal(t, []notify.Kind{notify.KindConnectionError}, recorder.Kinds())
}

func TestStartSessionPassesBrief(t *testing.T) {
	var got *models.Brief
	transport := &stubTransport{startFn: func(_ context.Context, brief *models.Brief) (tutorapi.StartResult, error) {
		got = brief
		return tutorapi.StartResult{SessionID: "xyz"}, nil
	}}
	ctrl, _ := newTestController(transport)

	brief := &models.Brief{Topic: "Gravity", Difficulty: models.DifficultyBeginner, Objective: "Explain falling apples"}
	ctrl.StartSessionWithBrief(context.Background(), brief)

	require.Equal(t, brief, got)
	require.Equal(t, "xyz", ctrl.Snapshot().SessionID)
}

func TestStartSessionIgnoredOutsideLanding(t *testing.T) {
	transport := &stubTransport{}
	ctrl, _ := newTestController(transport)

	ctrl.StartSession(context.Background())
	ctrl.StartSession(context.Background())

	require.Equal(t, []string{"start"}, transport.Calls())
}

func TestSendMessageIsOptimistic(t *testing.T) {
	var ctrl *Controller
	var during Snapshot
	transport := &stubTransport{chatFn: func(_ context.Context, sessionID, message string) (string, error) {
		during = ctrl.Snapshot()
		require.Equal(t, "abc", sessionID)
		require.Equal(t, "Explain gravity", message)
		return "Why does it pull things?", nil
	}}
	ctrl, _ = newTestController(transport)
	ctrl.StartSession(context.Background())

	ctrl.SendMessage(context.Background(), "Explain gravity")

	require.True(t, during.IsLoading())
	require.Equal(t, []models.Message{{Role: models.RoleUser, Content: "Explain gravity"}}, during.Messages)

	snap := ctrl.Snapshot()
	require.False(t, snap.IsLoading())
	require.Equal(t, []models.Message{
		{Role: models.RoleUser, Content: "Explain gravity"},
		{Role: models.RoleAssistant, Content: "Why does it pull things?"},
	}, snap.Messages)
}

func TestTranscriptAlternatesOnSuccessfulTurns(t *testing.T) {
	ctrl, _ := newTestController(&stubTransport{})
	ctrl.StartSession(context.Background())

	const turns = 5
	for i := 0; i < turns; i++ {
		ctrl.SendMessage(context.Background(), "teaching")
	}

	messages := ctrl.Snapshot().Messages
	require.Len(t, messages, 2*turns)
	for i, message := range messages {
		if i%2 == 0 {
			require.Equal(t, models.RoleUser, message.Role)
		} else {
			require.Equal(t, models.RoleAssistant, message.Role)
		}
	}
}

func TestSendMessageFailureRollsBack(t *testing.T) {
	fail := false
	transport := &stubTransport{chatFn: func(context.Context, string, string) (string, error) {
		if fail {
			return "", errNetwork
		}
		return "Why?", nil
	}}
	ctrl, recorder := newTestController(transport)
	ctrl.StartSession(context.Background())
	ctrl.SendMessage(context.Background(), "first")
	before := ctrl.Snapshot().Messages

	fail = true
	ctrl.SendMessage(context.Background(), "second")

	snap := ctrl.Snapshot()
	require.Equal(t, before, snap.Messages)
	require.Equal(t, models.StateChat, snap.State)
	require.False(t, snap.IsLoading())
	require.Equal(t, []notify.Kind{notify.KindMessageError}, recorder.Kinds())
}

func TestSendMessageFailureOnEmptyTranscript(t *testing.T) {
	transport := &stubTransport{chatFn: func(context.Context, string, string) (string, error) {
		return "", errNetwork
	}}
	ctrl, recorder := newTestController(transport)
	ctrl.StartSession(context.Background())

	ctrl.SendMessage(context.Background(), "Explain gravity")

	require.Empty(t, ctrl.Snapshot().Messages)
	require.Equal(t, "Message Error", recorder.seen[0].Title)
}

func TestOperationsWithoutSessionAreNoOps(t *testing.T) {
	transport := &stubTransport{}
	ctrl, recorder := newTestController(transport)

	emitted := 0
	ctrl.Subscribe(func(Snapshot) { emitted++ })

	ctrl.SendMessage(context.Background(), "hello")
	ctrl.EndTeaching(context.Background())

	requireInitial(t, ctrl.Snapshot())
	require.Empty(t, transport.Calls())
	require.Empty(t, recorder.Kinds())
	require.Zero(t, emitted)
}

func TestEndTeachingSuccess(t *testing.T) {
	ctrl, _ := newTestController(&stubTransport{})
	ctrl.StartSession(context.Background())
	ctrl.SendMessage(context.Background(), "Explain gravity")
	require.Nil(t, ctrl.Snapshot().Evaluation)

	ctrl.EndTeaching(context.Background())

	snap := ctrl.Snapshot()
	require.Equal(t, models.StateEvaluation, snap.State)
	require.NotNil(t, snap.Evaluation)
	require.Equal(t, 85, snap.Evaluation.Score)
	require.Empty(t, snap.Evaluation.Weaknesses)
	require.Len(t, snap.Messages, 2)
	require.False(t, snap.IsEnding())
}

func TestEndTeachingFailureStaysInChat(t *testing.T) {
	transport := &stubTransport{endFn: func(context.Context, string) (models.Evaluation, error) {
		return models.Evaluation{}, errNetwork
	}}
	ctrl, recorder := newTestController(transport)
	ctrl.StartSession(context.Background())
	ctrl.SendMessage(context.Background(), "Explain gravity")
	before := ctrl.Snapshot().Messages

	ctrl.EndTeaching(context.Background())

	snap := ctrl.Snapshot()
	require.Equal(t, models.StateChat, snap.State)
	require.Nil(t, snap.Evaluation)
	require.Equal(t, before, snap.Messages)
	require.Equal(t, []notify.Kind{notify.KindEvaluationError}, recorder.Kinds())
}

func TestEndTeachingIgnoredAfterEvaluation(t *testing.T) {
	transport := &stubTransport{}
	ctrl, _ := newTestController(transport)
	ctrl.StartSession(context.Background())
	ctrl.EndTeaching(context.Background())
	ctrl.EndTeaching(context.Background())
	ctrl.SendMessage(context.Background(), "late")

	require.Equal(t, []string{"start", "end_teaching"}, transport.Calls())
	require.Empty(t, ctrl.Snapshot().Messages)
}

func TestStartNewResetsFromEveryState(t *testing.T) {
	ctrl, _ := newTestController(&stubTransport{})

	ctrl.StartNew()
	requireInitial(t, ctrl.Snapshot())

	ctrl.StartSession(context.Background())
	ctrl.SendMessage(context.Background(), "Explain gravity")
	ctrl.StartNew()
	requireInitial(t, ctrl.Snapshot())

	ctrl.StartSession(context.Background())
	ctrl.SendMessage(context.Background(), "Explain gravity")
	ctrl.EndTeaching(context.Background())
	require.Equal(t, models.StateEvaluation, ctrl.Snapshot().State)
	ctrl.StartNew()
	requireInitial(t, ctrl.Snapshot())
}

func TestStaleReplyAfterResetIsDropped(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	transport := &stubTransport{chatFn: func(context.Context, string, string) (string, error) {
		close(entered)
		<-release
		return "late reply", nil
	}}
	ctrl, recorder := newTestController(transport)
	ctrl.StartSession(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.SendMessage(context.Background(), "Explain gravity")
	}()

	<-entered
	ctrl.StartNew()
	close(release)
	waitFor(t, done)

	requireInitial(t, ctrl.Snapshot())
	require.Empty(t, recorder.Kinds())
}

func TestStaleFailureAfterResetIsDropped(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	transport := &stubTransport{endFn: func(context.Context, string) (models.Evaluation, error) {
		close(entered)
		<-release
		return models.Evaluation{}, errNetwork
	}}
	ctrl, recorder := newTestController(transport)
	ctrl.StartSession(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.EndTeaching(context.Background())
	}()

	<-entered
	ctrl.StartNew()
	ctrl.StartSession(context.Background())
	close(release)
	waitFor(t, done)

	snap := ctrl.Snapshot()
	require.Equal(t, models.StateChat, snap.State)
	require.Empty(t, recorder.Kinds())
}

func TestOverlappingOperationsAreRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	transport := &stubTransport{chatFn: func(context.Context, string, string) (string, error) {
		close(entered)
		<-release
		return "Why?", nil
	}}
	ctrl, _ := newTestController(transport)
	ctrl.StartSession(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.SendMessage(context.Background(), "Explain gravity")
	}()

	<-entered
	snap := ctrl.Snapshot()
	require.True(t, snap.IsLoading())
	require.False(t, snap.IsEnding())

	ctrl.EndTeaching(context.Background())
	ctrl.SendMessage(context.Background(), "again")

	close(release)
	waitFor(t, done)

	require.Equal(t, []string{"start", "chat"}, transport.Calls())
	require.Len(t, ctrl.Snapshot().Messages, 2)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	ctrl, _ := newTestController(&stubTransport{})

	var states []models.AppState
	var loading []bool
	cancel := ctrl.Subscribe(func(s Snapshot) {
		states = append(states, s.State)
		loading = append(loading, s.IsLoading())
	})

	ctrl.StartSession(context.Background())
	require.Equal(t, []models.AppState{models.StateLanding, models.StateChat}, states)
	require.Equal(t, []bool{true, false}, loading)

	cancel()
	ctrl.StartNew()
	require.Len(t, states, 2)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctrl, _ := newTestController(&stubTransport{})
	ctrl.StartSession(context.Background())
	ctrl.SendMessage(context.Background(), "Explain gravity")
	ctrl.EndTeaching(context.Background())

	snap := ctrl.Snapshot()
	snap.Messages[0].Content = "mutated"
	snap.Evaluation.Strengths[0] = "mutated"

	again := ctrl.Snapshot()
	require.Equal(t, "Explain gravity", again.Messages[0].Content)
	require.Equal(t, "clear", again.Evaluation.Strengths[0])
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not complete")
	}
}
