package conn

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"k8s.io/klog/v2"
)

// DefaultBackOff is the retry policy used by the CLI: exponential with
// jitter, giving up after maxElapsed (0 means never).
func DefaultBackOff(maxElapsed time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = maxElapsed
	return b
}

// ConnectWithRetry calls Connect until the connection is open, waiting
// between attempts according to b. It returns nil once open, or the last
// error when b gives up or ctx is done.
func (m *Manager) ConnectWithRetry(ctx context.Context, b backoff.BackOff, listeners ...Listener) error {
	attempt := 0
	op := func() error {
		attempt++
		m.Connect(listeners...)
		err := m.WaitOpen(ctx)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		klog.Warningf("conn: attempt %d to reach %s failed (%v), retrying in %s", attempt, m.URL(), err, wait)
	}
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
}
