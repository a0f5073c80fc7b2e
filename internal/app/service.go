// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/apidemo/internal/domain/model"
	"github.com/okian/apidemo/internal/domain/profile"
	"github.com/okian/apidemo/pkg/logger"
	"github.com/okian/apidemo/pkg/metrics"
)

// DefaultGreeting is the fixed payload of the greeting endpoint.
const DefaultGreeting = "hello from api 1"

// Rejection reasons used as metric labels.
const (
	ReasonInvalidBirthDate  = "invalid_birth_date"
	ReasonBirthDateInFuture = "birth_date_in_future"
	ReasonAgeOutOfRange     = "age_out_of_range"
	ReasonOther             = "other"
)

// Service implements the API dependencies. It keeps no per-request state;
// the mutex only guards the start/stop lifecycle.
type Service struct {
	mu sync.RWMutex

	builder  *profile.Builder
	greeting string
	clock    func() time.Time

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock used to derive ages.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithGreeting overrides the greeting text.
func WithGreeting(text string) Option {
	return func(s *Service) {
		if text != "" {
			s.greeting = text
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		greeting: DefaultGreeting,
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.builder = profile.NewBuilder(profile.WithClock(s.clock))
	return s
}

// Start marks the service ready. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.started = true
	s.logger.Info(ctx, "profile service started", logger.String("greeting", s.greeting))
	return nil
}

// Stop marks the service stopped. It is idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "profile service stopped")
}

// Started reports whether Start has been called without a matching Stop.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Greet returns the fixed greeting.
func (s *Service) Greet(_ context.Context) string {
	metrics.RecordGreeting()
	return s.greeting
}

// BuildProfile derives a profile from the raw request values. Every error it
// returns is caused by client input.
func (s *Service) BuildProfile(ctx context.Context, name, birthDate, phoneNumbers string) (model.Profile, error) {
	p, err := s.builder.Build(ctx, profile.Input{
		Name:         name,
		BirthDate:    birthDate,
		PhoneNumbers: phoneNumbers,
	})
	if err != nil {
		reason := RejectionReason(err)
		metrics.RecordProfileRejection(reason)
		s.log().Debug(ctx, "profile rejected",
			logger.String("name", name),
			logger.String("reason", reason),
			logger.Error(err),
		)
		return model.Profile{}, err
	}

	metrics.RecordProfile(p.Age, len(p.Phones))
	s.log().Debug(ctx, "profile built",
		logger.String("name", p.Name),
		logger.Int("age", int(p.Age)),
		logger.Int("phones", len(p.Phones)),
	)
	return p, nil
}

// RejectionReason maps a derivation error to a stable label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, profile.ErrInvalidBirthDate):
		return ReasonInvalidBirthDate
	case errors.Is(err, profile.ErrBirthDateInFuture):
		return ReasonBirthDateInFuture
	case errors.Is(err, profile.ErrAgeOutOfRange):
		return ReasonAgeOutOfRange
	default:
		return ReasonOther
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}
