package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/merit/internal/adapters/mq/queue"
	worker "github.com/okian/merit/internal/adapters/mq/worker"
	model "github.com/okian/merit/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

var errUnknownRuleset = errors.New("unknown ruleset")

type mockEvaluator struct {
	delay time.Duration
}

func (m *mockEvaluator) Evaluate(ctx context.Context, app model.Application) (model.Evaluation, error) { //nolint:gocritic // test double
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if app.RulesetVersion == "missing" {
		return model.Evaluation{}, errUnknownRuleset
	}
	return model.Evaluation{ApplicationID: app.ID, Composite: app.AcademicBase}, nil
}

type mockSink struct {
	mu        sync.Mutex
	recorded  map[string]float64
	failed    map[string]error
	recordErr error
}

func newMockSink() *mockSink {
	return &mockSink{recorded: map[string]float64{}, failed: map[string]error{}}
}

func (s *mockSink) Record(_ context.Context, ev model.Evaluation) error { //nolint:gocritic // test double
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded[ev.ApplicationID] = ev.Composite
	return nil
}

func (s *mockSink) Fail(_ context.Context, app model.Application, err error) { //nolint:gocritic // test double
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[app.ID] = err
}

func (s *mockSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recorded), len(s.failed)
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		sink := newMockSink()
		pool := worker.NewPool(4, q, &mockEvaluator{}, sink)
		pool.Start(ctx)

		convey.Convey("When applications are queued and the pool shuts down", func() {
			for i := range 20 {
				convey.So(q.Enqueue(ctx, model.Application{ID: fmt.Sprint(i), AcademicBase: float64(i)}), convey.ShouldBeNil)
			}
			convey.So(q.Enqueue(ctx, model.Application{ID: "bad", RulesetVersion: "missing"}), convey.ShouldBeNil)

			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every queued job is drained", func() {
				convey.So(err, convey.ShouldBeNil)
				recorded, failed := sink.counts()
				convey.So(recorded, convey.ShouldEqual, 20)
				convey.So(failed, convey.ShouldEqual, 1)
				convey.So(pool.Processed(), convey.ShouldEqual, 20)
				convey.So(pool.Failed(), convey.ShouldEqual, 1)
				convey.So(sink.recorded["7"], convey.ShouldEqual, 7)
				convey.So(errors.Is(sink.failed["bad"], errUnknownRuleset), convey.ShouldBeTrue)
			})

			convey.Convey("And the queue rejects further work", func() {
				convey.So(q.Enqueue(ctx, model.Application{ID: "late"}), convey.ShouldEqual, queue.ErrClosed)
			})
		})

		convey.Convey("When Start is called again", func() {
			pool.Start(ctx)

			convey.Convey("Then the pool size is unchanged", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 4)
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool that was never started", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(2, q, &mockEvaluator{}, newMockSink())

		convey.Convey("Then shutdown only closes the queue", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a slow pool and a short shutdown deadline", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(1, q, &mockEvaluator{delay: 50 * time.Millisecond}, newMockSink())
		pool.Start(ctx)
		for i := range 10 {
			_ = q.Enqueue(ctx, model.Application{ID: fmt.Sprint(i)})
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		err := pool.Shutdown(shutdownCtx)

		convey.Convey("Then shutdown reports the timeout", func() {
			convey.So(errors.Is(err, worker.ErrShutdownTimeout), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a sink that rejects records", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		sink := newMockSink()
		sink.recordErr = errors.New("store unavailable")
		pool := worker.NewPool(1, q, &mockEvaluator{}, sink)
		pool.Start(ctx)
		_ = q.Enqueue(ctx, model.Application{ID: "a1"})
		convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

		convey.Convey("Then the job is reported as failed", func() {
			_, failed := sink.counts()
			convey.So(failed, convey.ShouldEqual, 1)
			convey.So(pool.Failed(), convey.ShouldEqual, 1)
		})
	})
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a single named worker", t, func() {
		q := queue.NewInMemoryQueue()
		sink := newMockSink()
		w := worker.NewInMemoryWorker(q, &mockEvaluator{}, sink, worker.WithName("solo"))

		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)

		convey.Convey("When it is stopped", func() {
			w.Stop()
			w.Stop()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
				cancel()
			})
		})

		convey.Convey("When its context is cancelled", func() {
			cancel()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}
