/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package retry holds the single retry policy shared by every outbound
// client: a bounded attempt cap, doubling backoff between attempts, and a
// predicate deciding which errors are worth retrying at all.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts caps total attempts, including the first one.
	MaxAttempts int
	// InitialInterval is the delay before the second attempt. It doubles on
	// every subsequent attempt.
	InitialInterval time.Duration
	// Retryable decides whether an error is transient. A nil predicate
	// retries every error.
	Retryable func(error) bool
}

// ErrMaxRetries wraps the last error once the attempt cap is exhausted.
type ErrMaxRetries struct {
	Attempts int
	Last     error
}

func (e *ErrMaxRetries) Error() string {
	return errors.Wrapf(e.Last, "max retries (%d) exceeded", e.Attempts).Error()
}

func (e *ErrMaxRetries) Unwrap() error { return e.Last }

// Do runs op under the policy. Non-retryable errors propagate immediately;
// retryable errors are retried with exponential backoff until the attempt cap
// is reached, at which point the last error comes back wrapped in
// ErrMaxRetries.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := 0
	lastRetryable := false

	wrapped := func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			lastRetryable = false
			return backoff.Permanent(err)
		}
		lastRetryable = true
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	maxRetries := uint64(0)
	if p.MaxAttempts > 1 {
		maxRetries = uint64(p.MaxAttempts - 1)
	}

	err := backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
	if err != nil && lastRetryable && attempts >= p.MaxAttempts {
		return &ErrMaxRetries{Attempts: attempts, Last: err}
	}
	return err
}
