// Package inbox serializes work per conversation. Each active conversation
// gets one worker that drains its queue in arrival order and exits when the
// queue is empty; different conversations run in parallel.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"corralon_backend/platform/logger"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("inbox closed")

// Job is one unit of work for a conversation.
type Job func(ctx context.Context)

// Dispatcher runs jobs FIFO per key.
type Dispatcher struct {
	ctx    context.Context
	log    *logger.Logger
	mu     sync.Mutex
	queues map[string][]Job
	closed bool
	wg     sync.WaitGroup
}

// New returns a dispatcher whose jobs receive ctx.
func New(ctx context.Context, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		ctx:    context.WithoutCancel(ctx),
		log:    log,
		queues: make(map[string][]Job),
	}
}

// Submit enqueues job behind any pending work for key.
func (d *Dispatcher) Submit(key string, job Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	q, running := d.queues[key]
	d.queues[key] = append(q, job)
	if !running {
		d.wg.Add(1)
		go d.drain(key)
	}
	return nil
}

// Active returns the number of conversations with a live worker.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

// Close stops accepting jobs and waits for queued ones to finish or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("inbox drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) drain(key string) {
	defer d.wg.Done()
	for {
		job, ok := d.next(key)
		if !ok {
			return
		}
		d.run(key, job)
	}
}

// next pops the head of the queue, removing the key when it is empty so the
// next Submit starts a fresh worker.
func (d *Dispatcher) next(key string) (Job, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := d.queues[key]
	if len(q) == 0 {
		delete(d.queues, key)
		return nil, false
	}
	job := q[0]
	q[0] = nil
	d.queues[key] = q[1:]
	return job, true
}

func (d *Dispatcher) run(key string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithConversation(key).Error("inbox job panicked", "panic", fmt.Sprint(r))
		}
	}()
	job(d.ctx)
}
