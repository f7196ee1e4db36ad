// Package retry wraps Telegram handlers with a bounded retry-on-transient
// failure policy: exponential backoff, a rate-limit suggested-wait override,
// and a terminal error once the attempt budget is spent.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xomakone3/storebot/core/logger"
	"github.com/xomakone3/storebot/core/telegram/helpers"
	"github.com/xomakone3/storebot/core/telegram/netutil"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// ErrExhausted marks a transient failure that survived every retry attempt.
// The dispatch loop is expected to log and drop the update, not crash.
var ErrExhausted = errors.New("retry: attempts exhausted")

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
)

// Policy describes the execution budget of a wrapped operation.
// The zero value uses the defaults (3 attempts, 1s base delay).
type Policy struct {
	// MaxRetries bounds the number of attempts for transient failures.
	MaxRetries int
	// BaseDelay seeds the exponential backoff: attempt n sleeps BaseDelay * 2^n.
	BaseDelay time.Duration
	// Sleep is overridable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

func (p Policy) maxRetries() int {
	if p.MaxRetries <= 0 {
		return defaultMaxRetries
	}
	return p.MaxRetries
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return defaultBaseDelay
	}
	return p.BaseDelay
}

func (p Policy) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Do runs op, retrying transient failures with exponential backoff. The same
// call is repeated with the same arguments; non-retryable errors propagate
// immediately. A rate-limit error that carries a suggested wait sleeps
// max(backoff, suggested). After MaxRetries transient failures the last error
// is returned wrapped in ErrExhausted.
func (p Policy) Do(ctx context.Context, op func() error) error {
	max := p.maxRetries()
	base := p.baseDelay()

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !netutil.ShouldRetry(err) {
			return err
		}
		if attempt >= max {
			logger.Error(ctx, "tg.retry", "retry.exhausted",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", max),
				slog.String("err", err.Error()),
			)
			return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
		}

		delay := base << attempt
		if suggested := netutil.SuggestedWait(err); suggested > delay {
			delay = suggested
		}
		logger.Warn(ctx, "tg.retry", "retry.backoff",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", max),
			slog.Duration("delay", delay),
			slog.String("err", err.Error()),
		)
		p.sleep(delay)

		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Wrap decorates a handler so every invocation runs under the policy.
// Applied uniformly at registration time.
func (p Policy) Wrap(h tele.HandlerFunc) tele.HandlerFunc {
	if h == nil {
		return nil
	}
	return func(c tele.Context) error {
		ctx, ok := helpers.ContextFrom(c)
		if !ok {
			ctx = context.Background()
		}
		return p.Do(ctx, func() error {
			return h(c)
		})
	}
}
