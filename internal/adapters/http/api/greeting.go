package api

import (
	"context"
	"net/http"
)

// GreetingDependencies defines the interface for the greeting route.
type GreetingDependencies interface {
	Greet(ctx context.Context) string
}

// GreetingHandler serves the fixed greeting.
type GreetingHandler struct {
	deps GreetingDependencies
}

// NewGreetingHandler creates a new greeting handler.
func NewGreetingHandler(deps GreetingDependencies) *GreetingHandler {
	return &GreetingHandler{deps: deps}
}

// HandleGreeting handles GET /api/api1/hello. Headers and query string are
// ignored.
func (h *GreetingHandler) HandleGreeting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.deps.Greet(r.Context())))
}
