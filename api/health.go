// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"context"
	"time"
)

// maxHealthDelay caps the pause between health attempts.
const maxHealthDelay = 5 * time.Second

// CheckHealth queries the health endpoint up to attempts times. The pause
// after a failed attempt starts at baseDelay and doubles each time, up to
// maxHealthDelay.
//
// On failure it returns the last status the backend reported (zero if it never
// answered) along with the error from the final attempt.
func (c *Client) CheckHealth(ctx context.Context, attempts int, baseDelay time.Duration) (HealthStatus, error) {
	if attempts <= 0 {
		return HealthStatus{}, ErrInvalidMaxAttempts
	}

	var (
		last HealthStatus
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return last, ctxErr
		}

		var health HealthStatus
		health, err = c.Health(ctx)
		if health != (HealthStatus{}) {
			last = health
		}
		if err == nil {
			if attempt > 1 {
				c.logger.Info("backend became healthy", "attempt", attempt)
			}
			return health, nil
		}
		if attempt == attempts {
			break
		}

		delay := healthDelay(baseDelay, attempt)
		c.logger.Debug("backend not ready, retrying", "attempt", attempt, "attempts", attempts, "delay", delay, "status", health.Status, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.Warn("backend health check failed", "attempts", attempts, "status", last.Status, "err", err)
	return last, err
}

// healthDelay returns the pause after the given failed attempt (1-based).
func healthDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxHealthDelay {
			return maxHealthDelay
		}
	}
	return min(delay, maxHealthDelay)
}
