package middleware

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// Config customises the outgoing middleware chain.
type Config struct {
	Logger *zerolog.Logger
}

// Wrap layers the common client middlewares around base. A nil base uses http.DefaultTransport.
func Wrap(base http.RoundTripper, cfg Config) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	return CorrelationID(Observability(requestLogger, base))
}
