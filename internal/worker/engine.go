// Package worker runs trading-calc jobs: batches of item order lookups fed
// through the analyzer, with progress polling and cooperative cancellation.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/domain/service/analyzer"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// ErrJobNotFound is returned for unknown or evicted job ids.
var ErrJobNotFound = domain.NewError(errcodes.JobNotFound, "Job not found") //nolint:gochecknoglobals

type MarketClient interface {
	Items(ctx context.Context) ([]entity.Item, error)
	ItemOrders(ctx context.Context, urlName string) ([]entity.Order, error)
}

type Cooldown interface {
	CooldownRemaining() time.Duration
}

type Metrics interface {
	JobStarted()
	JobFinished(status string, opportunities, failedItems int)
}

type Engine struct {
	market   MarketClient
	cooldown Cooldown
	metrics  Metrics
	reports  chan<- entity.Job
	now      func() time.Time

	defaultBatchSize int
	maxBatchSize     int
	batchDelay       time.Duration
	primeOnly        bool
	ingameOnly       bool

	jobs *cache.Cache
	wg   sync.WaitGroup
}

func NewEngine(market MarketClient, cooldown Cooldown, metrics Metrics, cfg config.Jobs) *Engine {
	if metrics == nil {
		metrics = noMetrics{}
	}

	if cooldown == nil {
		cooldown = noCooldown{}
	}

	return &Engine{
		market:           market,
		cooldown:         cooldown,
		metrics:          metrics,
		now:              time.Now,
		defaultBatchSize: max(cfg.DefaultBatchSize, 1),
		maxBatchSize:     max(cfg.MaxBatchSize, cfg.DefaultBatchSize, 1),
		batchDelay:       cfg.BatchDelay,
		primeOnly:        cfg.PrimeOnly,
		ingameOnly:       cfg.IngameOnly,
		jobs:             cache.New(cfg.TTL, max(cfg.TTL/2, time.Second)),
	}
}

// WithReports makes the engine publish every job that finishes done with at
// least one opportunity. Sends never block; a full channel drops the report.
func (e *Engine) WithReports(reports chan<- entity.Job) *Engine {
	e.reports = reports
	return e
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Candidates returns the items a job should scan: the given ones, or the
// whole catalog when none are given, narrowed to prime items if configured.
func (e *Engine) Candidates(ctx context.Context, items []entity.Item) ([]entity.Item, error) {
	if len(items) == 0 {
		catalog, err := e.market.Items(ctx)
		if err != nil {
			return nil, fmt.Errorf("market.Items: %w", err)
		}

		items = catalog
	}

	if e.primeOnly {
		items = lo.Filter(items, func(item entity.Item, _ int) bool { return item.IsPrime() })
	}

	return items, nil
}

// BatchSize clamps a requested batch size to the configured bounds; zero or
// negative selects the default.
func (e *Engine) BatchSize(requested int) int {
	if requested <= 0 {
		return e.defaultBatchSize
	}

	return min(requested, e.maxBatchSize)
}

// Submit registers a job over items and processes it in the background. It
// never blocks on upstream calls.
func (e *Engine) Submit(ctx context.Context, items []entity.Item, constraints entity.Constraints, batchSize int) string {
	batchSize = e.BatchSize(batchSize)
	now := e.now()

	j := &job{
		cancelCh: make(chan struct{}),
		state: entity.Job{
			ID:          uuid.NewString(),
			Status:      entity.JobStatusRunning,
			Total:       len(items),
			BatchSize:   batchSize,
			Results:     []entity.Opportunity{},
			Constraints: constraints,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	e.jobs.SetDefault(j.state.ID, j)
	e.metrics.JobStarted()

	jobCtx := contextx.WithLogger(
		context.WithoutCancel(ctx),
		logger(ctx).With(slog.String(logx.FieldJobID, j.state.ID)),
	)

	logger(jobCtx).Info("job submitted",
		slog.Int(logx.FieldTotal, len(items)),
		slog.Int(logx.FieldBatch, batchSize),
	)

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		e.run(jobCtx, j, lo.Chunk(items, batchSize))
	}()

	return j.state.ID
}

func (e *Engine) Poll(jobID string) (entity.Job, error) {
	j, ok := e.get(jobID)
	if !ok {
		return entity.Job{}, ErrJobNotFound
	}

	return j.snapshot(), nil
}

// Cancel asks a job to stop before its next batch. Cancelling a finished job
// is a no-op.
func (e *Engine) Cancel(jobID string) error {
	j, ok := e.get(jobID)
	if !ok {
		return ErrJobNotFound
	}

	j.cancel()

	return nil
}

// CancelAll cancels every running job and reports how many there were.
func (e *Engine) CancelAll() int {
	var cancelled int

	for _, item := range e.jobs.Items() {
		j, ok := item.Object.(*job)
		if !ok {
			continue
		}

		if j.cancel() {
			cancelled++
		}
	}

	return cancelled
}

// Shutdown cancels all jobs and waits for their runners to exit.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.CancelAll()

	done := make(chan struct{})

	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait jobs: %w", ctx.Err())
	}
}

func (e *Engine) get(jobID string) (*job, bool) {
	v, ok := e.jobs.Get(jobID)
	if !ok {
		return nil, false
	}

	j, ok := v.(*job)

	return j, ok
}

func (e *Engine) run(ctx context.Context, j *job, batches [][]entity.Item) {
	defer func() {
		if r := recover(); r != nil {
			logger(ctx).Error("job runner panicked", slog.Any("panic", r))
			e.finish(ctx, j, entity.JobStatusFailed, fmt.Sprintf("internal error: %v", r))
		}
	}()

	for i, batch := range batches {
		if j.isCancelled() {
			e.finish(ctx, j, entity.JobStatusCancelled, "")
			return
		}

		if i > 0 && !e.sleep(j, e.batchDelay) {
			e.finish(ctx, j, entity.JobStatusCancelled, "")
			return
		}

		if !e.sleep(j, e.cooldown.CooldownRemaining()) {
			e.finish(ctx, j, entity.JobStatusCancelled, "")
			return
		}

		opportunities, failed, err := e.processBatch(ctx, j, batch)
		if err != nil {
			logger(ctx).Error("batch aborted", slog.Int(logx.FieldBatch, i+1), logx.Error(err))
			e.finish(ctx, j, entity.JobStatusFailed, err.Error())

			return
		}

		progress := j.advance(len(batch), opportunities, failed, e.now())
		e.jobs.SetDefault(j.id(), j)

		logger(ctx).Debug("batch processed",
			slog.Int(logx.FieldBatch, i+1),
			slog.Int(logx.FieldProgress, progress),
			slog.Int("opportunities", len(opportunities)),
		)
	}

	e.finish(ctx, j, entity.JobStatusDone, "")
}

// processBatch fans out one task per item and waits for all of them. Item
// errors are counted and never abort the batch; a panicking item does, and
// comes back as the error.
func (e *Engine) processBatch(ctx context.Context, j *job, batch []entity.Item) ([]entity.Opportunity, int, error) {
	found := make([]*entity.Opportunity, len(batch))

	var (
		g      errgroup.Group
		failed atomic.Int32
	)

	for i, item := range batch {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("internal error: item %s panicked: %v", item.URLName, r)
				}
			}()

			if j.isCancelled() {
				return nil
			}

			opportunity, ok, err := e.analyzeItem(ctx, item, j.constraints())
			if err != nil {
				failed.Add(1)
				logger(ctx).Warn("item analysis failed",
					slog.String(logx.FieldItem, item.URLName),
					logx.Error(err),
				)

				return nil
			}

			if ok {
				found[i] = &opportunity
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	opportunities := lo.FilterMap(found, func(o *entity.Opportunity, _ int) (entity.Opportunity, bool) {
		if o == nil {
			return entity.Opportunity{}, false
		}

		return *o, true
	})

	return opportunities, int(failed.Load()), nil
}

func (e *Engine) analyzeItem(
	ctx context.Context,
	item entity.Item,
	constraints entity.Constraints,
) (entity.Opportunity, bool, error) {
	orders, err := e.market.ItemOrders(ctx, item.URLName)
	if err != nil {
		return entity.Opportunity{}, false, fmt.Errorf("market.ItemOrders: %w", err)
	}

	if e.ingameOnly {
		orders = lo.Filter(orders, func(o entity.Order, _ int) bool { return o.IsIngame() })
	}

	opportunity, ok := analyzer.Analyze(orders, item, constraints, e.now())

	return opportunity, ok, nil
}

// sleep waits for d unless the job is cancelled first.
func (e *Engine) sleep(j *job, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-j.cancelCh:
		return false
	}
}

func (e *Engine) finish(ctx context.Context, j *job, status entity.JobStatus, message string) {
	state, ok := j.finish(status, message, e.now())
	if !ok {
		return
	}

	e.jobs.SetDefault(state.ID, j)
	e.metrics.JobFinished(string(status), len(state.Results), state.FailedItems)

	logger(ctx).Info("job finished",
		slog.String(logx.FieldStatus, string(status)),
		slog.Int(logx.FieldProgress, state.Progress),
		slog.Int(logx.FieldTotal, state.Total),
		slog.Int("opportunities", len(state.Results)),
		slog.Int("failed_items", state.FailedItems),
	)

	if e.reports == nil || status != entity.JobStatusDone || len(state.Results) == 0 {
		return
	}

	select {
	case e.reports <- state:
	default:
		logger(ctx).Warn("report channel full, job report dropped")
	}
}

type noMetrics struct{}

func (noMetrics) JobStarted() {}

func (noMetrics) JobFinished(string, int, int) {}

type noCooldown struct{}

func (noCooldown) CooldownRemaining() time.Duration { return 0 }
