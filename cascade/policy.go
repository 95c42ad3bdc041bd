package cascade

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Policy paces follow checks. Wait is called after every query.
type Policy interface {
	Wait(ctx context.Context) error
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(ctx context.Context) error

// Wait implements Policy.
func (f PolicyFunc) Wait(ctx context.Context) error { return f(ctx) }

// FixedDelay sleeps d after every query. It does not look at API responses.
func FixedDelay(d time.Duration) Policy {
	return PolicyFunc(func(ctx context.Context) error {
		if d <= 0 {
			return nil
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// SecondsPerQuery is FixedDelay expressed in (possibly fractional) seconds.
// Five seconds is safe for the standard friendship endpoint.
func SecondsPerQuery(s float64) Policy {
	return FixedDelay(time.Duration(s * float64(time.Second)))
}

// TokenBucket allows bursts of up to burst queries refilled at r per second.
func TokenBucket(r rate.Limit, burst int) Policy {
	lim := rate.NewLimiter(r, burst)
	return PolicyFunc(lim.Wait)
}

// NoWait never waits.
func NoWait() Policy {
	return PolicyFunc(func(context.Context) error { return nil })
}

type rateLimitedOracle struct {
	oracle FollowOracle
	policy Policy
}

// RateLimited wraps oracle so that policy.Wait runs after every query,
// whatever its answer. A failed query returns immediately without waiting.
func RateLimited(oracle FollowOracle, policy Policy) FollowOracle {
	return &rateLimitedOracle{oracle: oracle, policy: policy}
}

func (o *rateLimitedOracle) Follows(ctx context.Context, a, b int64) (bool, bool, error) {
	ab, ba, err := o.oracle.Follows(ctx, a, b)
	if err != nil {
		return false, false, err
	}
	if err := o.policy.Wait(ctx); err != nil {
		return false, false, err
	}
	return ab, ba, nil
}
