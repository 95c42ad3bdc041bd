package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimited(t *testing.T) {
	tests := []struct {
		name      string
		oracleErr error
		waitErr   error
		wantWaits int
		wantErr   error
	}{
		{name: "waits after answer", wantWaits: 1},
		{name: "oracle error skips wait", oracleErr: ErrTransport, wantErr: ErrTransport},
		{name: "wait error surfaces", waitErr: context.Canceled, wantWaits: 1, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waits := 0
			policy := PolicyFunc(func(context.Context) error {
				waits++
				return tt.waitErr
			})
			oracle := OracleFunc(func(context.Context, int64, int64) (bool, bool, error) {
				return true, false, tt.oracleErr
			})

			ab, _, err := RateLimited(oracle, policy).Follows(context.Background(), 1, 2)
			require.Equal(t, tt.wantWaits, waits)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				require.False(t, ab)
				return
			}
			require.NoError(t, err)
			require.True(t, ab)
		})
	}
}

func TestFixedDelay(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedDelay(20*time.Millisecond).Wait(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, FixedDelay(time.Hour).Wait(ctx), context.Canceled)

	require.NoError(t, SecondsPerQuery(0).Wait(context.Background()))
}

func TestTokenBucket(t *testing.T) {
	p := TokenBucket(rate.Every(20*time.Millisecond), 2)
	start := time.Now()
	for range 3 {
		require.NoError(t, p.Wait(context.Background()))
	}
	// The burst covers two waits; the third needs a refill.
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestNoWait(t *testing.T) {
	require.NoError(t, NoWait().Wait(context.Background()))
}
