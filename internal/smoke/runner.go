package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/apidemo/pkg/logger"
)

// Errors returned by Run.
var (
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrProbeFailed   = errors.New("probe failed")
	ErrCasesRejected = errors.New("cases failed verification")
)

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeMismatch
	outcomeFailed
)

// Run executes the complete smoke test and returns the collected statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	if err := checkHealth(ctx, client); err != nil {
		return stats, err
	}
	if err := checkGreeting(ctx, client); err != nil {
		return stats, err
	}
	if err := checkInvalidDate(ctx, client); err != nil {
		return stats, err
	}

	cases, err := GenerateCases(ctx, config.NumRequests, time.Now().UTC())
	if err != nil {
		return stats, err
	}
	stats.Generated = len(cases)

	submitCases(ctx, config, client, cases, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Mismatched > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d mismatched, %d failed", ErrCasesRejected, stats.Mismatched, stats.Failed)
	}
	log.Info(ctx, "smoke test completed successfully")
	return stats, nil
}

func checkHealth(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.Get(ctx, pathHealth)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func checkGreeting(ctx context.Context, client *HTTPClient) error {
	status, body, err := client.Get(ctx, pathGreeting)
	if err != nil {
		return fmt.Errorf("%w: greeting: %w", ErrProbeFailed, err)
	}
	if status != http.StatusOK || string(body) != expectedGreeting {
		return fmt.Errorf("%w: greeting returned %d %q", ErrProbeFailed, status, body)
	}
	return nil
}

func checkInvalidDate(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.PostProfile(ctx, "probe", invalidBirthDate, "1")
	if err != nil {
		return fmt.Errorf("%w: invalid date: %w", ErrProbeFailed, err)
	}
	if status != http.StatusBadRequest {
		return fmt.Errorf("%w: invalid date returned %d, want %d", ErrProbeFailed, status, http.StatusBadRequest)
	}
	return nil
}

// submitCases fans cases out to a worker pool and tallies the outcomes.
func submitCases(ctx context.Context, config *Config, client *HTTPClient, cases []Case, stats *Stats) {
	workers := max(1, min(config.Workers, len(cases)))
	logger.Get().Info(ctx, "submitting cases", logger.Int("count", len(cases)), logger.Int("workers", workers))

	var successful, mismatched, failed, submitted int64

	caseChan := make(chan Case, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range caseChan {
				atomic.AddInt64(&submitted, 1)
				switch submitCase(ctx, config, client, c) {
				case outcomeSuccess:
					atomic.AddInt64(&successful, 1)
				case outcomeMismatch:
					atomic.AddInt64(&mismatched, 1)
				case outcomeFailed:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(caseChan)
		for _, c := range cases {
			select {
			case <-ctx.Done():
				return
			case caseChan <- c:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Mismatched = int(atomic.LoadInt64(&mismatched))
	stats.Failed = int(atomic.LoadInt64(&failed))
}

func submitCase(ctx context.Context, config *Config, client *HTTPClient, c Case) outcome {
	log := logger.Get()

	status, body, err := client.PostProfile(ctx, c.Name, c.BirthDate, c.Phones)
	if err != nil || status != http.StatusOK {
		if config.Verbose {
			log.Warn(ctx, "profile request failed",
				logger.String("name", c.Name), logger.Int("status", status), logger.Error(err))
		}
		return outcomeFailed
	}

	got, err := decodeProfile(body)
	if err == nil {
		err = Verify(c, got, time.Now().UTC())
	}
	if err != nil {
		if config.Verbose {
			log.Warn(ctx, "profile verification failed",
				logger.String("name", c.Name), logger.String("birth_date", c.BirthDate), logger.Error(err))
		}
		return outcomeMismatch
	}
	return outcomeSuccess
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
