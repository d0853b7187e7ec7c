// Package tutorapitest provides an in-process fake of the tutor service for tests.
package tutorapitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/reverse-tutor/internal/dto"
	"github.com/noah-isme/reverse-tutor/internal/middleware"
	"github.com/noah-isme/reverse-tutor/internal/models"
	"github.com/noah-isme/reverse-tutor/internal/router"
	"github.com/noah-isme/reverse-tutor/internal/utils"
)

// BaseURL is the address clients should be configured with when using Transport.
const BaseURL = "http://tutor.test"

// DefaultReply is what the fake student answers unless overridden.
const DefaultReply = "How does that work when nothing is pushing it?"

// ErrUnreachable is returned by Unreachable transports.
var ErrUnreachable = errors.New("tutorapitest: connection refused")

// Request records one call received by the fake service.
type Request struct {
	Method        string
	Path          string
	Query         string
	Body          string
	ContentType   string
	CorrelationID string
}

// Server mimics the tutor service: session start, chat turns and end of teaching.
type Server struct {
	mu         sync.Mutex
	app        *fiber.App
	validate   *validator.Validate
	sessions   map[string][]models.Message
	nextID     string
	reply      string
	evaluation models.Evaluation
	failures   map[string][]int
	requests   []Request
}

// NewServer returns a fake service with default replies.
func NewServer() *Server {
	s := &Server{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		sessions: make(map[string][]models.Message),
		reply:    DefaultReply,
		evaluation: models.Evaluation{
			Score:             65,
			Strengths:         []string{"Clear high-level explanation"},
			Weaknesses:        []string{"Lacked depth in internal mechanisms"},
			Suggestions:       []string{"Use examples"},
			FollowUpQuestions: []string{"What happens when context length is exceeded?"},
		},
		failures: make(map[string][]int),
	}

	// Recorded paths and headers outlive the request, so fiber must not hand out views of its buffers.
	app := fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})
	router.Register(app, router.Dependencies{
		AppName:     "tutorapitest",
		AppEnv:      "test",
		Middleware:  []fiber.Handler{s.record},
		Start:       s.start,
		Chat:        s.chat,
		EndTeaching: s.endTeaching,
	})
	s.app = app

	return s
}

// Transport routes requests straight into the fake service without opening a socket.
func (s *Server) Transport() http.RoundTripper {
	return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return s.app.Test(req, -1)
	})
}

// Unreachable returns a transport that fails every call as a network fault would.
func Unreachable() http.RoundTripper {
	return middleware.RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, ErrUnreachable
	})
}

// SetNextSessionID fixes the identifier handed out by the next start call.
func (s *Server) SetNextSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = id
}

// SetReply changes the student's answer to every chat turn.
func (s *Server) SetReply(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = reply
}

// SetEvaluation changes the verdict returned by end_teaching.
func (s *Server) SetEvaluation(eval models.Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluation = eval
}

// FailNext makes the next call to path answer with status.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], status)
}

// Requests returns every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// History returns the transcript the service holds for a session.
func (s *Server) History(sessionID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.sessions[sessionID]))
	copy(out, s.sessions[sessionID])
	return out
}

func (s *Server) record(c *fiber.Ctx) error {
	path := strings.TrimRight(c.Path(), "/")

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        c.Method(),
		Path:          path,
		Query:         string(c.Request().URI().QueryString()),
		Body:          string(c.Body()),
		ContentType:   c.Get(fiber.HeaderContentType),
		CorrelationID: c.Get(middleware.CorrelationHeader),
	})
	var status int
	if queued := s.failures[path]; len(queued) > 0 {
		status = queued[0]
		s.failures[path] = queued[1:]
	}
	s.mu.Unlock()

	if status != 0 {
		return utils.SendDetail(c, status, "injected failure")
	}
	return c.Next()
}

func (s *Server) start(c *fiber.Ctx) error {
	var brief *dto.StartSessionRequest
	if len(c.Body()) > 0 {
		brief = &dto.StartSessionRequest{}
		if err := json.Unmarshal(c.Body(), brief); err != nil {
			return utils.SendDetail(c, fiber.StatusUnprocessableEntity, "invalid body")
		}
		if err := s.validate.Struct(brief); err != nil {
			return utils.SendDetail(c, fiber.StatusUnprocessableEntity, err.Error())
		}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID = ""
	if id == "" {
		id = uuid.NewString()
	}
	s.sessions[id] = nil
	s.mu.Unlock()

	resp := dto.StartSessionResponse{SessionID: id, Message: "Teaching session started"}
	if brief != nil {
		resp.Session = &dto.SessionSummary{Topic: brief.Topic, Difficulty: brief.Difficulty, Objective: brief.Objective}
	}
	return utils.SendJSON(c, fiber.StatusOK, resp)
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.SendDetail(c, fiber.StatusUnprocessableEntity, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions[req.SessionID]
	if !ok {
		return utils.SendDetail(c, fiber.StatusNotFound, "Session not found")
	}
	history = append(history,
		models.Message{Role: models.RoleUser, Content: req.Message},
		models.Message{Role: models.RoleAssistant, Content: s.reply},
	)
	s.sessions[req.SessionID] = history

	return utils.SendJSON(c, fiber.StatusOK, dto.ChatResponse{Response: s.reply})
}

func (s *Server) endTeaching(c *fiber.Ctx) error {
	id := c.Query("session_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return utils.SendDetail(c, fiber.StatusNotFound, "Session not found")
	}
	delete(s.sessions, id)

	return utils.SendJSON(c, fiber.StatusOK, dto.NewEvaluationResponse(s.evaluation))
}
