package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdxsite/internal/config"
)

func TestFromConfig(t *testing.T) {
	assert.Equal(t, DefaultPolicy(), FromConfig(config.RetryConfig{}))

	p := FromConfig(config.RetryConfig{Backoff: config.RetryBackoffFixed, Initial: 5 * time.Second, Max: 2 * time.Second, MaxRetries: 5})
	assert.Equal(t, 2*time.Second, p.Initial, "initial is clamped to max")
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)
}

func TestDelay(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		mode config.RetryBackoffMode
		want []time.Duration
	}{
		{config.RetryBackoffFixed, []time.Duration{100 * ms, 100 * ms, 100 * ms, 100 * ms}},
		{config.RetryBackoffLinear, []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{config.RetryBackoffExponential, []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			p := Policy{Mode: tc.mode, Initial: 100 * ms, Max: 250 * ms, MaxRetries: 4}
			for i, want := range tc.want {
				assert.Equal(t, want, p.Delay(i+1), "retry %d", i+1)
			}
			assert.Zero(t, p.Delay(0))
			assert.Zero(t, p.Delay(-1))
		})
	}

	huge := Policy{Mode: config.RetryBackoffExponential, Initial: time.Second, Max: time.Minute}
	assert.Equal(t, time.Minute, huge.Delay(200), "large attempts do not overflow")
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())
	require.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestDo(t *testing.T) {
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 3}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		var retried []int
		err := Do(t.Context(), p, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("unavailable")
			}
			return nil
		}, func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) })
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("gives up", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := Do(t.Context(), p, func(context.Context) error { calls++; return boom }, nil)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 4, calls)
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		slow := Policy{Mode: config.RetryBackoffFixed, Initial: time.Hour, Max: time.Hour, MaxRetries: 1}
		boom := errors.New("boom")
		err := Do(ctx, slow, func(context.Context) error { return boom },
			func(int, time.Duration, error) { cancel() })
		require.ErrorIs(t, err, boom)
		require.ErrorIs(t, err, context.Canceled)
	})
}
