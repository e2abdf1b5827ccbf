package validator

import "time"

// Option configures the Validator.
type Option func(*Validator)

// WithClock overrides the time source used for the expiry check.
// Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}
