package notify

import (
	"context"
	"sync"
	"time"

	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/metrics"

	"go.uber.org/zap"
)

const dispatchTimeout = 15 * time.Second

// Dispatcher sends messages in the background. Delivery failures are logged
// and counted; callers never see them.
type Dispatcher struct {
	sender  Sender
	metrics *metrics.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{sender: sender, metrics: m, timeout: dispatchTimeout}
}

// Dispatch returns immediately. The send outlives ctx's cancellation but keeps
// its values, so the request id still reaches the logs.
func (d *Dispatcher) Dispatch(ctx context.Context, m Message) {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, m); err != nil {
			logger.FromCtx(ctx).Warn("notification failed",
				zap.String("kind", string(m.Kind)),
				zap.String("to", m.To),
				zap.Error(err),
			)
			d.metrics.NotificationFailed(string(m.Kind))
			return
		}
		d.metrics.NotificationSent(string(m.Kind))
	}()
}

// Wait blocks until every dispatched message has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
