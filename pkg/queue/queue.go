// Package queue runs background jobs. Jobs are registered by name,
// dispatched as JSON envelopes through a driver (in-memory or Redis), and
// retried with backoff before landing in the failed-jobs store.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/enventory/pkg/logger"
)

// Job is a unit of background work, registered by name.
type Job interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// Envelope is the wire format pushed through a driver.
type Envelope struct {
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Driver moves envelopes between producers and workers.
type Driver interface {
	// Push enqueues a raw envelope.
	Push(ctx context.Context, raw []byte) error
	// Pop blocks until an envelope is available or ctx is cancelled.
	Pop(ctx context.Context) ([]byte, error)
	Close() error
}

const maxAttempts = 3

// retryBackoff scales the wait between attempts: attempt n waits n times
// this interval. A variable so tests can shrink it.
var retryBackoff = time.Second

var (
	mu     sync.RWMutex
	jobs   = map[string]Job{}
	driver Driver

	// OnFailure is invoked after a job exhausts its attempts. The server
	// installs a Mongo persister at boot; the default only logs.
	OnFailure = func(ctx context.Context, env Envelope, err error) {
		logger.Error("job failed permanently", "job", env.Name, "error", err.Error())
	}
)

// Register makes a job dispatchable by name.
func Register(j Job) {
	mu.Lock()
	defer mu.Unlock()
	jobs[j.Name()] = j
}

// SetDriver installs the transport. Must be called before Dispatch or
// StartWorkers.
func SetDriver(d Driver) {
	mu.Lock()
	defer mu.Unlock()
	driver = d
}

func currentDriver() Driver {
	mu.RLock()
	defer mu.RUnlock()
	return driver
}

// Dispatch enqueues a job by name with a JSON-marshalable payload.
func Dispatch(ctx context.Context, name string, payload interface{}) error {
	d := currentDriver()
	if d == nil {
		return fmt.Errorf("queue: no driver configured")
	}

	mu.RLock()
	_, known := jobs[name]
	mu.RUnlock()
	if !known {
		return fmt.Errorf("queue: unknown job %q", name)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: marshal payload: %w", err)
	}

	env, err := json.Marshal(Envelope{
		Name:       name,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return d.Push(ctx, env)
}

// StartWorkers launches n workers that consume envelopes until ctx is
// cancelled. Returns a wait function for graceful shutdown.
func StartWorkers(ctx context.Context, n int) (wait func()) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			work(ctx, id)
		}(i)
	}
	return wg.Wait
}

func work(ctx context.Context, id int) {
	for {
		d := currentDriver()
		if d == nil {
			return
		}

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue pop failed", "worker", id, "error", err.Error())
			time.Sleep(time.Second)
			continue
		}
		if raw == nil {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logger.Error("queue envelope corrupt, dropping", "worker", id, "error", err.Error())
			continue
		}

		process(ctx, env)
	}
}

func process(ctx context.Context, env Envelope) {
	mu.RLock()
	job, ok := jobs[env.Name]
	mu.RUnlock()
	if !ok {
		logger.Error("no handler for job, dropping", "job", env.Name)
		return
	}

	var err error
	for env.Attempts < maxAttempts {
		env.Attempts++
		err = runJob(ctx, job, env.Payload)
		if err == nil {
			return
		}
		logger.Warn("job attempt failed",
			"job", env.Name, "attempt", env.Attempts, "error", err.Error())

		if env.Attempts < maxAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(env.Attempts) * retryBackoff):
			}
		}
	}

	OnFailure(ctx, env, err)
}

func runJob(ctx context.Context, job Job, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Handle(ctx, payload)
}
