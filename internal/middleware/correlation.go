package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CorrelationHeader is the header carrying the correlation identifier on outgoing requests.
const CorrelationHeader = "X-Correlation-ID"

type correlationIDKey struct{}

var correlationKey = correlationIDKey{}

// RoundTripperFunc adapts a function into an http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// CorrelationID ensures every outgoing request carries a correlation identifier so service logs can be
// matched with client logs. An identifier already bound to the request context is reused.
func CorrelationID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		incoming := strings.TrimSpace(req.Header.Get(CorrelationHeader))
		if incoming == "" {
			incoming = CorrelationIDFromContext(req.Context())
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		ctx := ContextWithCorrelation(req.Context(), incoming)
		outgoing := req.Clone(ctx)
		outgoing.Header.Set(CorrelationHeader, incoming)

		return next.RoundTrip(outgoing)
	})
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value := ctx.Value(correlationKey); value != nil {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// ContextWithCorrelation attaches the correlation identifier to the provided context.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(correlationID) == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey, strings.TrimSpace(correlationID))
}
