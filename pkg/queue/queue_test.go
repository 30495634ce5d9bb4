package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name    string
	handled atomic.Int32
	fail    atomic.Int32 // fail the first N attempts
	last    atomic.Value // last payload seen
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Handle(ctx context.Context, payload json.RawMessage) error {
	n := j.handled.Add(1)
	j.last.Store(string(payload))
	if n <= j.fail.Load() {
		return errors.New("transient failure")
	}
	return nil
}

// shrinkBackoff keeps retrying tests fast: with the production interval the
// full retry cycle (1s + 2s) would outlast waitFor's deadline.
func shrinkBackoff(t *testing.T) {
	t.Helper()
	prev := retryBackoff
	retryBackoff = 5 * time.Millisecond
	t.Cleanup(func() { retryBackoff = prev })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatchAndProcess(t *testing.T) {
	job := &countingJob{name: "test.echo"}
	Register(job)
	SetDriver(NewMemoryDriver(16))
	t.Cleanup(func() { SetDriver(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wait := StartWorkers(ctx, 1)

	require.NoError(t, Dispatch(ctx, "test.echo", map[string]string{"k": "v"}))

	waitFor(t, func() bool { return job.handled.Load() == 1 })
	assert.JSONEq(t, `{"k":"v"}`, job.last.Load().(string))

	cancel()
	wait()
}

func TestDispatchUnknownJob(t *testing.T) {
	SetDriver(NewMemoryDriver(1))
	t.Cleanup(func() { SetDriver(nil) })

	err := Dispatch(context.Background(), "test.never-registered", nil)
	assert.Error(t, err)
}

func TestDispatchNoDriver(t *testing.T) {
	SetDriver(nil)
	err := Dispatch(context.Background(), "test.echo", nil)
	assert.Error(t, err)
}

func TestRetryThenSucceed(t *testing.T) {
	shrinkBackoff(t)
	job := &countingJob{name: "test.flaky"}
	job.fail.Store(1) // first attempt fails, second succeeds
	Register(job)
	SetDriver(NewMemoryDriver(16))
	t.Cleanup(func() { SetDriver(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wait := StartWorkers(ctx, 1)

	require.NoError(t, Dispatch(ctx, "test.flaky", "payload"))

	waitFor(t, func() bool { return job.handled.Load() == 2 })

	cancel()
	wait()
}

func TestExhaustedAttemptsHitOnFailure(t *testing.T) {
	shrinkBackoff(t)
	job := &countingJob{name: "test.doomed"}
	job.fail.Store(100)
	Register(job)
	SetDriver(NewMemoryDriver(16))
	t.Cleanup(func() { SetDriver(nil) })

	var failed atomic.Int32
	prev := OnFailure
	OnFailure = func(ctx context.Context, env Envelope, err error) {
		failed.Add(1)
		assert.Equal(t, "test.doomed", env.Name)
		assert.Equal(t, maxAttempts, env.Attempts)
	}
	t.Cleanup(func() { OnFailure = prev })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wait := StartWorkers(ctx, 1)

	require.NoError(t, Dispatch(ctx, "test.doomed", nil))

	waitFor(t, func() bool { return failed.Load() == 1 })
	assert.EqualValues(t, maxAttempts, job.handled.Load())

	cancel()
	wait()
}

func TestMemoryDriverClose(t *testing.T) {
	d := NewMemoryDriver(1)
	require.NoError(t, d.Close())

	err := d.Push(context.Background(), []byte("x"))
	assert.Error(t, err)

	_, err = d.Pop(context.Background())
	assert.Error(t, err)
}
