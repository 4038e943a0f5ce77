// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/merit/internal/adapters/mq/queue"
	"github.com/okian/merit/internal/adapters/mq/worker"
	"github.com/okian/merit/internal/adapters/repository"
	"github.com/okian/merit/internal/domain/dedupe"
	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/rules"
	"github.com/okian/merit/internal/domain/scoring"
	"github.com/okian/merit/internal/domain/types"
	"github.com/okian/merit/pkg/logger"
	"github.com/okian/merit/pkg/metrics"
)

// scoringAdapter lets the worker pool score without recording; the pool
// hands results back through the Service's Sink methods.
type scoringAdapter struct {
	svc *Service
}

func (a scoringAdapter) Evaluate(ctx context.Context, app model.Application) (model.Evaluation, error) { //nolint:gocritic // hugeParam: worker contract
	return a.svc.score(ctx, app)
}

// Service implements the API dependencies for the admission ranking.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *rules.Registry
	scorers  map[string]*scoring.Scorer
	ranking  repository.Store
	deduper  dedupe.Deduper
	queue    queue.Queue
	pool     *worker.Pool

	resultsMu sync.RWMutex
	results   map[string]types.Result

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	now         func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service. Without WithRegistry only the built-in
// ordinance is available.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  100_000,
		now:         time.Now,
		results:     make(map[string]types.Result),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")

	if s.registry == nil {
		reg, err := rules.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("build default registry: %w", err)
		}
		s.registry = reg
	}
	s.scorers = make(map[string]*scoring.Scorer)
	for _, v := range s.registry.Versions() {
		rs, err := s.registry.Get(v)
		if err != nil {
			return nil, err
		}
		s.scorers[v] = scoring.New(scoring.WithRuleset(rs))
	}

	s.ranking = repository.NewTreapStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s, nil
}

// Start creates the queue and starts the worker pool. Cancelling ctx does
// not stop the workers; call Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize), queue.WithClock(s.now))
	s.pool = worker.NewPool(s.workerCount, s.queue, scoringAdapter{svc: s}, s, worker.WithLogger(s.logger))

	// Workers outlive ctx; only Stop ends them, after the queue drains.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "admission service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("default_ruleset", s.registry.Default()),
	)
	return nil
}

// Stop stops accepting submissions and waits for queued applications to be
// evaluated, or for ctx to expire.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	s.logger.Info(ctx, "stopping admission service...")
	err := s.pool.Shutdown(ctx)
	s.cancel()
	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "admission service stopped")
	return nil
}

func (s *Service) scorerFor(version string) (*scoring.Scorer, error) {
	if version == "" {
		version = s.registry.Default()
	}
	sc, ok := s.scorers[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", rules.ErrUnknownRuleset, version)
	}
	return sc, nil
}

// score evaluates app without touching the ranking.
func (s *Service) score(ctx context.Context, app model.Application) (model.Evaluation, error) { //nolint:gocritic // hugeParam: applications are passed by value throughout
	start := time.Now()

	sc, err := s.scorerFor(app.RulesetVersion)
	if err != nil {
		metrics.RecordEvaluationError()
		metrics.RecordErrorByComponent("service", "unknown_ruleset")
		return model.Evaluation{}, err
	}

	ev := sc.Evaluate(app)
	ev.EvaluatedAt = s.now().UTC()

	metrics.RecordEvaluation(ev.RulesetVersion)
	metrics.RecordCompositeScore(ev.Composite)
	if ev.Academic.Total > ev.Academic.Capped {
		metrics.RecordAcademicCapped()
	}
	metrics.RecordEvaluationLatency(float64(time.Since(start).Microseconds()) / 1000)

	s.logger.Debug(ctx, "application scored",
		logger.String("application_id", ev.ApplicationID),
		logger.String("ruleset", ev.RulesetVersion),
		logger.Float64("academic", ev.Academic.Capped),
		logger.Float64("performance", ev.Performance.Capped),
		logger.Float64("composite", ev.Composite),
		logger.Bool("special_talent", ev.Academic.SpecialTalent),
	)
	return ev, nil
}

// Evaluate scores an application synchronously and ranks it. An empty ID is
// replaced with a generated one.
func (s *Service) Evaluate(ctx context.Context, app model.Application) (model.Evaluation, error) { //nolint:gocritic // hugeParam: applications are passed by value throughout
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	ev, err := s.score(ctx, app)
	if err != nil {
		return model.Evaluation{}, err
	}
	if err := s.Record(ctx, ev); err != nil {
		return model.Evaluation{}, err
	}
	return ev, nil
}

// Record ranks a finished evaluation and stores it as the application's
// latest result.
func (s *Service) Record(ctx context.Context, ev model.Evaluation) error { //nolint:gocritic // hugeParam: worker contract
	_, err := s.ranking.Upsert(ctx, repository.Entry{
		ApplicationID:  ev.ApplicationID,
		Applicant:      ev.Applicant,
		RulesetVersion: ev.RulesetVersion,
		Composite:      ev.Composite,
		EvaluatedAt:    ev.EvaluatedAt,
	})
	if err != nil {
		return fmt.Errorf("rank %s: %w", ev.ApplicationID, err)
	}

	s.resultsMu.Lock()
	s.results[ev.ApplicationID] = types.Result{ApplicationID: ev.ApplicationID, Status: types.StatusEvaluated, Evaluation: &ev}
	s.resultsMu.Unlock()
	return nil
}

// Fail stores the reason an application could not be evaluated.
func (s *Service) Fail(ctx context.Context, app model.Application, err error) { //nolint:gocritic // hugeParam: worker contract
	s.resultsMu.Lock()
	s.results[app.ID] = types.Result{ApplicationID: app.ID, Status: types.StatusFailed, Error: err.Error()}
	s.resultsMu.Unlock()

	s.logger.Warn(ctx, "application evaluation failed",
		logger.String("application_id", app.ID),
		logger.Error(err),
	)
}

// Submit queues an application for asynchronous evaluation. A resubmitted
// ID is acknowledged as a duplicate and not evaluated again. When the queue
// is full the ID is forgotten so the caller can retry.
func (s *Service) Submit(ctx context.Context, app model.Application) (types.Submission, error) { //nolint:gocritic // hugeParam: applications are passed by value throughout
	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return types.Submission{}, ErrNotStarted
	}

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if _, err := s.scorerFor(app.RulesetVersion); err != nil {
		metrics.RecordErrorByComponent("service", "unknown_ruleset")
		return types.Submission{}, err
	}

	if s.deduper.SeenAndRecord(ctx, app.ID) {
		metrics.RecordDuplicate()
		s.logger.Debug(ctx, "duplicate application skipped", logger.String("application_id", app.ID))
		return types.Submission{ApplicationID: app.ID, Duplicate: true}, nil
	}

	s.resultsMu.Lock()
	s.results[app.ID] = types.Result{ApplicationID: app.ID, Status: types.StatusPending}
	s.resultsMu.Unlock()

	if err := q.Enqueue(ctx, app); err != nil {
		s.deduper.Unrecord(ctx, app.ID)
		s.resultsMu.Lock()
		if r := s.results[app.ID]; r.Status == types.StatusPending {
			delete(s.results, app.ID)
		}
		s.resultsMu.Unlock()

		switch {
		case errors.Is(err, queue.ErrFull):
			return types.Submission{}, fmt.Errorf("submit %s: %w", app.ID, ErrBackpressure)
		case errors.Is(err, queue.ErrClosed):
			return types.Submission{}, fmt.Errorf("submit %s: %w", app.ID, ErrNotStarted)
		default:
			return types.Submission{}, fmt.Errorf("submit %s: %w", app.ID, err)
		}
	}
	return types.Submission{ApplicationID: app.ID}, nil
}

// Result returns the latest outcome for an application.
func (s *Service) Result(_ context.Context, id string) (types.Result, error) {
	s.resultsMu.RLock()
	defer s.resultsMu.RUnlock()

	r, ok := s.results[id]
	if !ok {
		return types.Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// TopN returns the top N ranking entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.Page(ctx, 0, n)
}

// Page returns up to limit ranking entries after skipping offset.
func (s *Service) Page(ctx context.Context, offset, limit int) ([]types.Entry, error) {
	entries, err := s.ranking.Page(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	apiEntries := make([]types.Entry, len(entries))
	for i, e := range entries {
		apiEntries[i] = toAPIEntry(e)
	}
	return apiEntries, nil
}

// Rank returns the ranking entry for a given application id.
func (s *Service) Rank(ctx context.Context, id string) (types.Entry, error) {
	e, err := s.ranking.Rank(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return types.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case err != nil:
		return types.Entry{}, err
	}
	return toAPIEntry(e), nil
}

func toAPIEntry(e repository.Entry) types.Entry { //nolint:gocritic // hugeParam: small value type
	return types.Entry{
		Rank:           e.Rank,
		ApplicationID:  e.ApplicationID,
		Applicant:      e.Applicant,
		RulesetVersion: e.RulesetVersion,
		Composite:      e.Composite,
		EvaluatedAt:    e.EvaluatedAt,
	}
}

// Rulesets lists the registered ordinance versions.
func (s *Service) Rulesets() types.RulesetInfo {
	return types.RulesetInfo{Default: s.registry.Default(), Versions: s.registry.Versions()}
}

// Ruleset returns one ordinance; an empty version selects the default.
func (s *Service) Ruleset(version string) (*rules.Ruleset, error) {
	return s.registry.Get(version)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"dedupeEntries":  s.deduper.Size(),
		"ranked":         s.ranking.Count(ctx),
		"defaultRuleset": s.registry.Default(),
	}

	pending := 0
	s.resultsMu.RLock()
	for _, r := range s.results {
		if r.Status == types.StatusPending {
			pending++
		}
	}
	s.resultsMu.RUnlock()
	stats["pending"] = pending

	if s.pool != nil {
		stats["processed"] = s.pool.Processed()
		stats["failed"] = s.pool.Failed()
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}
