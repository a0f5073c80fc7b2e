// Package smoke drives a running service end to end and checks every answer
// against the derivation rules in the profile domain.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRequests int           // Number of profile requests to send
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Log every failed case
}

// Case is one generated profile request with its expected outcome.
type Case struct {
	Name      string
	BirthDate string
	Phones    string
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Mismatched int
	Failed     int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
