package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Observability logs every outgoing tutor service call with its latency and status.
func Observability(logger zerolog.Logger, next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)
		duration := time.Since(start)

		latencyMs := float64(duration) / float64(time.Millisecond)
		requestLogger := logger.With().
			Str("correlation_id", correlationOf(req)).
			Str("route", req.URL.Path).
			Str("method", req.Method).
			Float64("latency_ms", latencyMs).
			Str("latency_bucket", latencyBucket(duration)).
			Logger()

		if err != nil {
			requestLogger.Error().Err(err).Msg("tutor request failed")
			return resp, err
		}

		status := resp.StatusCode
		switch {
		case status >= http.StatusInternalServerError:
			requestLogger.Error().Int("status", status).Msg("tutor request failed")
		case status >= http.StatusBadRequest:
			requestLogger.Warn().Int("status", status).Msg("tutor request completed with client error")
		default:
			requestLogger.Debug().Int("status", status).Msg("tutor request completed")
		}

		return resp, nil
	})
}

func correlationOf(req *http.Request) string {
	if id := req.Header.Get(CorrelationHeader); id != "" {
		return id
	}
	return CorrelationIDFromContext(req.Context())
}

func latencyBucket(duration time.Duration) string {
	switch {
	case duration <= 100*time.Millisecond:
		return "<=100ms"
	case duration <= 500*time.Millisecond:
		return "<=500ms"
	case duration <= time.Second:
		return "<=1s"
	case duration <= 5*time.Second:
		return "<=5s"
	default:
		return ">5s"
	}
}
