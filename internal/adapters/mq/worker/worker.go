// Package worker evaluates queued applications and hands the results to a
// sink.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/merit/internal/adapters/mq/queue"
	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/pkg/logger"
	"github.com/okian/merit/pkg/metrics"
)

const defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()

// ErrShutdownTimeout is returned when workers do not drain before the
// shutdown context expires.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// Evaluator scores one application.
type Evaluator interface {
	Evaluate(ctx context.Context, app model.Application) (model.Evaluation, error)
}

// Sink receives the outcome of each job.
type Sink interface {
	Record(ctx context.Context, ev model.Evaluation) error
	Fail(ctx context.Context, app model.Application, err error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Counters are shared by the workers of one pool.
type Counters struct {
	Processed atomic.Int64
	Failed    atomic.Int64
}

// InMemoryWorker pulls jobs off a Queue until it is closed or stopped.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	sink      Sink
	name      string
	counters  *Counters

	stop chan struct{}
	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, ev Evaluator, sink Sink, opts ...Option) *InMemoryWorker {
	s := newSettings(opts)
	return &InMemoryWorker{
		queue:     q,
		evaluator: ev,
		sink:      sink,
		name:      s.name,
		counters:  s.counters,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		logger:    s.logger.Named(s.name),
	}
}

// Run processes jobs until the queue is drained and closed, ctx is done,
// or Stop is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Warn(ctx, "application not evaluated",
					logger.String("application_id", job.Application.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Stop makes Run return after the job in hand.
func (w *InMemoryWorker) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

// Done is closed when Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: jobs arrive by value
	metrics.AddActiveWorkers(1)
	start := time.Now()
	defer func() {
		metrics.AddActiveWorkers(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ev, err := w.evaluator.Evaluate(ctx, job.Application)
	if err != nil {
		w.counters.Failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluation_error")
		w.sink.Fail(ctx, job.Application, err)
		return fmt.Errorf("evaluate %s: %w", job.Application.ID, err)
	}
	if err := w.sink.Record(ctx, ev); err != nil {
		w.counters.Failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		w.sink.Fail(ctx, job.Application, err)
		return fmt.Errorf("record %s: %w", job.Application.ID, err)
	}
	w.counters.Processed.Add(1)
	w.logger.Debug(ctx, "application evaluated",
		logger.String("application_id", ev.ApplicationID),
		logger.Float64("composite", ev.Composite),
		logger.Duration("queued_for", start.Sub(job.EnqueuedAt)),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters
	started  atomic.Bool
	logger   logger.Logger
}

// NewPool creates a worker pool. A workerCount below 1 selects a multiple
// of the CPU count. Options apply to every worker.
func NewPool(workerCount int, q Queue, ev Evaluator, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &Counters{},
		logger:   newSettings(opts).logger.Named("worker-pool"),
	}
	for i := range workerCount {
		workerOpts := append(slices.Clone(opts), WithName("worker-"+strconv.Itoa(i)), withCounters(p.counters))
		p.workers[i] = NewInMemoryWorker(q, ev, sink, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of applications evaluated and recorded.
func (p *Pool) Processed() int64 { return p.counters.Processed.Load() }

// Failed returns the number of applications that could not be evaluated.
func (p *Pool) Failed() int64 { return p.counters.Failed.Load() }

// Start starts all workers in the pool. Later calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it. When ctx
// expires first the workers are stopped and ErrShutdownTimeout is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if !p.started.Load() {
		return nil
	}

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			for _, rest := range p.workers[i:] {
				rest.Stop()
			}
			p.logger.Warn(ctx, "worker pool shutdown timed out", logger.Int("pending_workers", len(p.workers)-i))
			return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
		}
	}
	p.logger.Info(ctx, "worker pool drained",
		logger.Int("processed", int(p.Processed())),
		logger.Int("failed", int(p.Failed())),
	)
	return nil
}
