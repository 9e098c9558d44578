package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/metrics"
)

// Dispatcher runs each notification on its own goroutine with a deadline.
// Failures and panics are logged and counted; callers never see them.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	log      *logrus.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, log *logrus.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout, log: log}
}

// Dispatch schedules ev and returns immediately.  The notification does
// not inherit the request context, which is cancelled once the response
// is written.
func (d *Dispatcher) Dispatch(ev StatusChange) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		entry := d.log.WithFields(logrus.Fields{"application_id": ev.ApplicationID, "status": ev.Status})
		if err := d.deliver(ctx, ev); err != nil {
			metrics.RecordNotification("failed")
			entry.WithError(err).Error("notify: delivery failed")
			return
		}
		metrics.RecordNotification("sent")
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, ev StatusChange) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return d.notifier.Notify(ctx, ev)
}

// Wait blocks until every dispatched notification finished or ctx is
// done.  Shutdown uses it to drain pending notices.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
