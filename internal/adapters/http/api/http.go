// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/apidemo/internal/domain/model"
	"github.com/okian/apidemo/pkg/logger"
)

// Route patterns. Both business routes live under the /api prefix.
const (
	PathGreeting = "/api/api1/hello"
	PathProfile  = "/api/api2/hello/{name}"
	PathHealth   = "/healthz"
	PathMetrics  = "/metrics"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GreetingDependencies
	ProfileDependencies
	HealthDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	greetingHandler *GreetingHandler
	profileHandler  *ProfileHandler
	healthHandler   *HealthHandler
	metricsHandler  http.Handler

	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
	logger       logger.Logger
}

// WithMaxBodyBytes caps the JSON body accepted by the profile route.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for access logs and panics.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("http")
	}

	return &Server{
		greetingHandler: NewGreetingHandler(deps),
		profileHandler:  NewProfileHandler(deps, o.maxBodyBytes),
		healthHandler:   NewHealthHandler(deps),
		metricsHandler:  NewMetricsHandler(),
		logger:          o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET "+PathGreeting, s.wrap(s.greetingHandler.HandleGreeting, "greeting"))
	mux.Handle("POST "+PathProfile, s.wrap(s.profileHandler.HandleProfile, "profile"))
	mux.Handle("GET "+PathHealth, s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET "+PathMetrics, s.metricsHandler)
}

// wrap applies the standard middleware chain to a handler.
func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return Chain(h,
		RequestID(),
		AccessLog(s.logger),
		MetricsMiddleware(endpoint),
		Recover(s.logger),
	)
}

// Request and response shapes. They mirror the embedded OpenAPI documents.

// birthDateRequest is the JSON body of POST /api/api2/hello/{name}.
type birthDateRequest struct {
	BirthDate string `json:"birth_date" validate:"required"`
}

// phoneQuery is the query string of POST /api/api2/hello/{name}. A pointer
// separates a missing parameter from an empty one.
type phoneQuery struct {
	PhoneNumbers *string `json:"phone_numbers" validate:"required"`
}

// profileResponse is the JSON body returned by the profile route.
type profileResponse = model.Profile

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	var kind *KindError
	switch {
	case errors.As(err, &kind):
		msg = kind.Message()
	case err != nil:
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
