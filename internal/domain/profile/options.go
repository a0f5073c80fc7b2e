package profile

import "time"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithClock overrides the source of "today". Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}
