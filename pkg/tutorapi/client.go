package tutorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/reverse-tutor/internal/dto"
	"github.com/noah-isme/reverse-tutor/internal/middleware"
	"github.com/noah-isme/reverse-tutor/internal/models"
	"github.com/noah-isme/reverse-tutor/internal/observability"
)

// Operation names the three calls the tutor service supports.
type Operation string

const (
	OpStart       Operation = "start"
	OpChat        Operation = "chat"
	OpEndTeaching Operation = "end_teaching"
)

const maxResponseBytes = 1 << 20

var (
	// ErrInvalidPayload reports a 2xx response whose body does not match the expected shape.
	ErrInvalidPayload = errors.New("tutorapi: invalid payload")
	// ErrInvalidRequest reports arguments rejected before any network call.
	ErrInvalidRequest = errors.New("tutorapi: invalid request")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Op         Operation
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("tutorapi %s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("tutorapi %s: status %d", e.Op, e.StatusCode)
}

// Config defines how the client reaches the tutor service.
type Config struct {
	BaseURL string
	// Timeout bounds a whole call. Zero leaves the transport defaults in place.
	Timeout   time.Duration
	Transport http.RoundTripper
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// StartResult is what the service returns when a session is created.
type StartResult struct {
	SessionID string
	Message   string
	Session   *dto.SessionSummary
}

// Client talks to the tutor service over JSON/HTTP. It never retries.
type Client struct {
	base      *url.URL
	http      *http.Client
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// New builds a client using the provided configuration.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("tutor service base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", base.Scheme)
	}

	validate := cfg.Validator
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	logger := cfg.Logger.With().Str("component", "tutor_client").Logger()
	transport := middleware.Wrap(cfg.Transport, middleware.Config{Logger: &logger})

	return &Client{
		base:      base,
		http:      &http.Client{Transport: transport, Timeout: cfg.Timeout},
		validator: validate,
		logger:    logger,
		tracer:    otel.Tracer("github.com/noah-isme/reverse-tutor/pkg/tutorapi"),
	}, nil
}

// Start opens a teaching session. A nil brief sends no body at all.
func (c *Client) Start(ctx context.Context, brief *models.Brief) (StartResult, error) {
	var body any
	if req := dto.NewStartSessionRequest(brief); req != nil {
		if err := c.validator.Struct(req); err != nil {
			return StartResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		body = req
	}

	var resp dto.StartSessionResponse
	err := c.call(ctx, OpStart, "/session/start", nil, body, func(raw []byte) error {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return err
		}
		return c.validator.Struct(resp)
	})
	if err != nil {
		return StartResult{}, err
	}

	return StartResult{SessionID: resp.SessionID, Message: resp.Message, Session: resp.Session}, nil
}

// Chat sends one teacher turn and returns the simulated student's reply.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (string, error) {
	req := dto.ChatRequest{SessionID: sessionID, Message: message}
	if err := c.validator.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var resp dto.ChatResponse
	err := c.call(ctx, OpChat, "/chat", nil, req, func(raw []byte) error {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return err
		}
		if strings.TrimSpace(resp.Reply()) == "" {
			return errors.New("reply text missing")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return resp.Reply(), nil
}

// EndTeaching closes the session and fetches its evaluation. The session id travels as a query parameter.
func (c *Client) EndTeaching(ctx context.Context, sessionID string) (models.Evaluation, error) {
	if strings.TrimSpace(sessionID) == "" {
		return models.Evaluation{}, fmt.Errorf("%w: session id is required", ErrInvalidRequest)
	}

	query := url.Values{}
	query.Set("session_id", sessionID)

	var resp dto.EvaluationResponse
	err := c.call(ctx, OpEndTeaching, "/session/end_teaching", query, nil, func(raw []byte) error {
		if err := validateEvaluation(raw); err != nil {
			return err
		}
		return json.Unmarshal(raw, &resp)
	})
	if err != nil {
		return models.Evaluation{}, err
	}

	return resp.ToModel(), nil
}

func (c *Client) call(parent context.Context, op Operation, path string, query url.Values, body any, decode func([]byte) error) error {
	ctx, span := c.tracer.Start(parent, "tutorapi."+string(op), trace.WithAttributes(
		attribute.String("tutor.operation", string(op)),
	))
	defer span.End()

	start := time.Now()
	err := c.do(ctx, op, path, query, body, decode)
	observability.APILatency().WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.APIRequests().WithLabelValues(string(op), outcomeOf(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().Err(err).Str("operation", string(op)).Msg("tutor call failed")
		return err
	}

	observability.APIRequests().WithLabelValues(string(op), "success").Inc()
	return nil
}

func (c *Client) do(ctx context.Context, op Operation, path string, query url.Values, body any, decode func([]byte) error) error {
	endpoint := c.base.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("tutorapi %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("tutorapi %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tutorapi %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("tutorapi %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode}
		var detail dto.ErrorResponse
		if json.Unmarshal(raw, &detail) == nil {
			statusErr.Detail = detail.Detail
		}
		return statusErr
	}

	if err := decode(raw); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, op, err)
	}
	return nil
}

func outcomeOf(err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return "status_error"
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrInvalidRequest):
		return "invalid_payload"
	default:
		return "transport_error"
	}
}
