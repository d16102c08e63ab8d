package middleware

import (
	"sync"

	"golang.org/x/time/rate"
)

// UserRateLimiter throttles inbound updates per Telegram user so one user
// cannot monopolize the transcode queue.
type UserRateLimiter struct {
	limiters map[int64]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewUserRateLimiter(r rate.Limit, b int) *UserRateLimiter {
	return &UserRateLimiter{
		limiters: make(map[int64]*rate.Limiter),
		rate:     r,
		burst:    b,
	}
}

// Allow reports whether the user may proceed right now.
func (rl *UserRateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[userID] = limiter
	}
	rl.mu.Unlock()

	return limiter.Allow()
}
