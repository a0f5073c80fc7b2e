package smoke

import (
	"io"
)

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `apidemo smoke test
==================

Drives a running apidemo service and verifies every profile it returns.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -requests int
        Number of profile requests to send (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every failed case
  -help
        Show this help message

Examples:
  go run ./cmd/smoke -requests 5000 -workers 16
  go run ./cmd/smoke -url http://localhost:9090 -verbose
`)
}
