package inventory

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/manufactura-api/internal/domain"
)

// withRetry ejecuta fn y la repite con backoff exponencial solo si falla con
// domain.ErrConcurrentModification. Cada intento es una transacción completa nueva.
func (l *Ledger) withRetry(ctx context.Context, operation string, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = l.opts.RetryInitialInterval
	eb.MaxInterval = 20 * l.opts.RetryInitialInterval
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(l.opts.RetryMaxAttempts-1)), ctx)

	return backoff.RetryNotify(func() error {
		err := fn()
		if err == nil || domain.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		l.metrics.observeRetry(operation)
		l.log.Warn().Err(err).Str("operation", operation).Dur("wait", wait).Msg("modificación concurrente, reintentando")
	})
}
