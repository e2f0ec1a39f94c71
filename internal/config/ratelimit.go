package config

import "time"

// RateLimitConfig controls the token bucket guarding the anonymous auth
// endpoints. Burst is the bucket size; one token comes back every
// RefillEvery. KeyBy picks what identifies a bucket: "ip" (default, since
// register and login run before any session exists), "user", or "ip_route".
type RateLimitConfig struct {
	Enabled     bool
	Burst       int
	RefillEvery time.Duration
	TTL         time.Duration
	KeyBy       string
	Prefix      string
}

// LoadRateLimitConfig reads the limiter settings from the environment. The
// defaults allow ten attempts up front, then one attempt every six seconds,
// which is generous for a human retyping a one-time code and hopeless for an
// invite-code guesser.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Burst:       envInt("RATE_LIMIT_BURST", 10),
		RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", 6*time.Second),
		TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyBy:       getenv("RATE_LIMIT_KEY_BY", "ip"),
		Prefix:      getenv("RATE_LIMIT_PREFIX", "forum:rl"),
	}
}
