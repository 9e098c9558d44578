package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierFunc func(ctx context.Context, ev StatusChange) error

func (f notifierFunc) Notify(ctx context.Context, ev StatusChange) error { return f(ctx, ev) }

// syncBuffer lets the dispatcher goroutine and the test share a log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger() (*logrus.Logger, *syncBuffer) {
	out := &syncBuffer{}
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{})
	return log, out
}

var sample = StatusChange{
	ApplicationID:  "a1",
	ApplicantEmail: "m@example.com",
	ApplicantName:  "Mia",
	JobTitle:       "Go dev",
	Company:        "Acme",
	Status:         "ACCEPTED",
}

func waitAll(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
}

func TestDispatcherDelivers(t *testing.T) {
	log, _ := testLogger()
	got := make(chan StatusChange, 1)
	d := NewDispatcher(notifierFunc(func(ctx context.Context, ev StatusChange) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		got <- ev
		return nil
	}), time.Second, log)

	d.Dispatch(sample)
	waitAll(t, d)
	assert.Equal(t, sample, <-got)
}

func TestDispatcherDoesNotBlockCaller(t *testing.T) {
	log, _ := testLogger()
	release := make(chan struct{})
	d := NewDispatcher(notifierFunc(func(ctx context.Context, _ StatusChange) error {
		<-release
		return nil
	}), time.Second, log)

	start := time.Now()
	d.Dispatch(sample)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)

	close(release)
	waitAll(t, d)
}

func TestDispatcherLogsFailuresAndPanics(t *testing.T) {
	log, out := testLogger()
	d := NewDispatcher(notifierFunc(func(ctx context.Context, ev StatusChange) error {
		if ev.ApplicationID == "panic" {
			panic("smtp exploded")
		}
		return errors.New("mailbox full")
	}), time.Second, log)

	d.Dispatch(sample)
	boom := sample
	boom.ApplicationID = "panic"
	d.Dispatch(boom)
	waitAll(t, d)

	logged := out.String()
	assert.Contains(t, logged, "mailbox full")
	assert.Contains(t, logged, "notifier panic: smtp exploded")
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	log, out := testLogger()
	d := NewDispatcher(notifierFunc(func(ctx context.Context, _ StatusChange) error {
		<-ctx.Done()
		return ctx.Err()
	}), 10*time.Millisecond, log)

	d.Dispatch(sample)
	waitAll(t, d)
	assert.Contains(t, out.String(), context.DeadlineExceeded.Error())
}

func TestLogNotifier(t *testing.T) {
	log, out := testLogger()
	require.NoError(t, LogNotifier{Log: log}.Notify(context.Background(), sample))
	logged := out.String()
	assert.Contains(t, logged, `"to":"m@example.com"`)
	assert.Contains(t, logged, `"status":"ACCEPTED"`)
	assert.Contains(t, logged, `"job":"Go dev"`)
}
