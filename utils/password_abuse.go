package utils

import (
	"context"
	"time"

	"github.com/statshare/statshare/config"
)

// Per-project password attempt limiting over a fixed one-hour window.
// Fail-open: when Redis is down or unconfigured, attempts are allowed and the
// bcrypt cost remains the only brake.

func attemptKey(projectID string) string {
	return "pwattempt:" + projectID
}

// PasswordAttemptAllowed records one attempt against the project and reports
// whether it is within the configured hourly budget.
func PasswordAttemptAllowed(projectID string) bool {
	cfg := config.Get()
	limit := cfg.PasswordAttemptsPerHour
	if limit <= 0 {
		return true
	}
	rc := GetRedis()
	if rc == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	key := attemptKey(projectID)
	n, err := rc.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		_ = rc.Expire(ctx, key, time.Hour).Err()
	}
	return n <= int64(limit)
}

// PasswordAttemptReset clears the attempt counter after a successful login.
func PasswordAttemptReset(projectID string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = rc.Del(ctx, attemptKey(projectID)).Err()
}
