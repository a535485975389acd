package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}

type Option func(*CircuitBreaker)

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *CircuitBreaker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithStateListener registers fn to be called on every state transition.
// fn runs with the breaker lock held and must not call back into it.
func WithStateListener(fn func(from, to CircuitState)) Option {
	return func(b *CircuitBreaker) {
		b.onChange = fn
	}
}

// WithFailureFilter decides which errors count against the breaker. Errors
// for which fn returns false are recorded as successes.
func WithFailureFilter(fn func(error) bool) Option {
	return func(b *CircuitBreaker) {
		if fn != nil {
			b.isFailure = fn
		}
	}
}
