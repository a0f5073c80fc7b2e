package smoke

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Generation ranges.
const (
	maxAgeDays      = 100 * 365
	maxPhones       = 4
	phoneDigitsHigh = 1000
	phoneDigitsLow  = 10000
)

// Probe values.
const (
	invalidBirthDate     = "not-a-date"
	percentageMultiplier = 100
)

// Paths probed by the runner.
const (
	pathHealth   = "/healthz"
	pathGreeting = "/api/api1/hello"
	pathProfile  = "/api/api2/hello/"
)

// Expected greeting text.
const expectedGreeting = "hello from api 1"
