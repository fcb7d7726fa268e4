// Package worker runs the bounded delivery pool behind inbound
// channels. The whatsapp bridge enqueues each webhook as a job and a
// semaphore caps how many agent turns run at once, so a burst of
// messages cannot fan out into unbounded LLM calls.
package worker

import "context"

// StartOptions configures one pool goroutine. Sem is shared across
// pools draining the same resource; its capacity is the concurrency
// cap.
type StartOptions[J any] struct {
	Ctx    context.Context
	Sem    chan struct{}
	Jobs   <-chan J
	Handle func(context.Context, J)
}

// Start launches a goroutine that drains Jobs until the channel closes
// or Ctx is cancelled. Each job holds a semaphore slot for the duration
// of Handle.
func Start[J any](opts StartOptions[J]) {
	go drain(opts)
}

func drain[J any](opts StartOptions[J]) {
	for {
		select {
		case <-opts.Ctx.Done():
			return
		case job, ok := <-opts.Jobs:
			if !ok {
				return
			}
			select {
			case opts.Sem <- struct{}{}:
			case <-opts.Ctx.Done():
				return
			}
			handleOne(opts, job)
		}
	}
}

func handleOne[J any](opts StartOptions[J], job J) {
	defer func() { <-opts.Sem }()
	opts.Handle(opts.Ctx, job)
}

// Enqueue offers a job to the pool, giving up when either the caller's
// ctx or the pool's own context ends. A full Jobs channel therefore
// surfaces as the caller's deadline, not a silent drop.
func Enqueue[J any](ctx, workersCtx context.Context, jobs chan<- J, job J) error {
	if ctx == nil {
		ctx = workersCtx
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-workersCtx.Done():
		return workersCtx.Err()
	case jobs <- job:
		return nil
	}
}
