package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/worker"
	"wfm_flipper/pkg/errcodes"
)

var constraints = entity.Constraints{MinProfit: 5, MaxOrderAgeDays: 30} //nolint:gochecknoglobals

type fakeMarket struct {
	catalog []entity.Item
	orders  map[string][]entity.Order
	failing map[string]bool
	broken  map[string]bool

	// gate, when set, blocks every ItemOrders call until it is closed.
	gate  chan struct{}
	calls atomic.Int32
}

func (f *fakeMarket) Items(context.Context) ([]entity.Item, error) {
	return f.catalog, nil
}

func (f *fakeMarket) ItemOrders(_ context.Context, urlName string) ([]entity.Order, error) {
	f.calls.Add(1)

	if f.gate != nil {
		<-f.gate
	}

	if f.broken[urlName] {
		panic("decoder blew up on " + urlName)
	}

	if f.failing[urlName] {
		return nil, domain.NewError(errcodes.NetworkError, "market request failed")
	}

	return f.orders[urlName], nil
}

type fakeCooldown struct {
	remaining atomic.Int64
}

func (f *fakeCooldown) CooldownRemaining() time.Duration {
	return time.Duration(f.remaining.Load())
}

type recordedMetrics struct {
	mu       sync.Mutex
	started  int
	finished []string
}

func (m *recordedMetrics) JobStarted() {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
}

func (m *recordedMetrics) JobFinished(status string, _, _ int) {
	m.mu.Lock()
	m.finished = append(m.finished, status)
	m.mu.Unlock()
}

func profitable() []entity.Order {
	return []entity.Order{
		{Type: entity.OrderTypeSell, Platinum: 50, Quantity: 1, UserStatus: entity.UserStatusIngame},
		{Type: entity.OrderTypeBuy, Platinum: 40, Quantity: 1, UserStatus: entity.UserStatusIngame, CreatedAt: time.Now()},
	}
}

func items(names ...string) []entity.Item {
	result := make([]entity.Item, 0, len(names))
	for _, name := range names {
		result = append(result, entity.Item{ID: name, Name: name, URLName: name})
	}

	return result
}

func jobsConfig() config.Jobs {
	return config.Jobs{
		DefaultBatchSize: 3,
		MaxBatchSize:     10,
		TTL:              time.Hour,
		IngameOnly:       true,
	}
}

func waitTerminal(t *testing.T, engine *worker.Engine, jobID string) entity.Job {
	t.Helper()

	var job entity.Job

	require.Eventually(t, func() bool {
		var err error

		job, err = engine.Poll(jobID)
		require.NoError(t, err)

		return job.Status.IsTerminal()
	}, 5*time.Second, 5*time.Millisecond)

	return job
}

func TestEngineCompletes(t *testing.T) {
	rq := require.New(t)

	market := &fakeMarket{
		orders: map[string][]entity.Order{
			"ash_prime_set":   profitable(),
			"rhino_prime_set": profitable(),
			"nova_prime_set": {
				{Type: entity.OrderTypeSell, Platinum: 50, UserStatus: entity.UserStatusIngame},
				{Type: entity.OrderTypeBuy, Platinum: 40, UserStatus: "offline", CreatedAt: time.Now()},
			},
		},
		failing: map[string]bool{"broken_prime": true},
	}
	metrics := &recordedMetrics{}
	reports := make(chan entity.Job, 1)

	engine := worker.NewEngine(market, &fakeCooldown{}, metrics, jobsConfig()).WithReports(reports)

	candidates := items("ash_prime_set", "broken_prime", "nova_prime_set", "empty_prime", "rhino_prime_set", "", "loki_prime_set")
	jobID := engine.Submit(context.Background(), candidates, constraints, 3)
	rq.NotEmpty(jobID)

	job := waitTerminal(t, engine, jobID)

	rq.Equal(entity.JobStatusDone, job.Status)
	rq.Equal(7, job.Total)
	rq.Equal(7, job.Progress)
	rq.Equal(3, job.BatchSize)
	rq.Equal(1, job.FailedItems)
	rq.False(job.Cancelled)
	rq.Len(job.Results, 2)

	// batch order is preserved
	rq.Equal("ash_prime_set", job.Results[0].ItemName)
	rq.Equal("rhino_prime_set", job.Results[1].ItemName)
	rq.Equal(41, job.Results[0].BuyPrice)
	rq.Equal(49, job.Results[0].SellPrice)
	rq.Equal(8, job.Results[0].NetProfit)

	select {
	case report := <-reports:
		rq.Equal(jobID, report.ID)
		rq.Len(report.Results, 2)
	case <-time.After(time.Second):
		rq.Fail("no report published")
	}

	metrics.mu.Lock()
	rq.Equal(1, metrics.started)
	rq.Equal([]string{"done"}, metrics.finished)
	metrics.mu.Unlock()
}

func TestEngineEmptyJob(t *testing.T) {
	rq := require.New(t)

	reports := make(chan entity.Job, 1)
	engine := worker.NewEngine(&fakeMarket{}, nil, nil, jobsConfig()).WithReports(reports)

	job := waitTerminal(t, engine, engine.Submit(context.Background(), nil, constraints, 0))

	rq.Equal(entity.JobStatusDone, job.Status)
	rq.Zero(job.Total)
	rq.Zero(job.Progress)
	rq.Empty(job.Results)
	rq.Empty(reports)
}

func TestEngineCancel(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name       string
		items      int
		batchSize  int
		wantStatus entity.JobStatus
	}{
		{
			name:       "Cancel during first of three batches",
			items:      9,
			batchSize:  3,
			wantStatus: entity.JobStatusCancelled,
		},
		{
			name:       "Cancel during last batch",
			items:      2,
			batchSize:  2,
			wantStatus: entity.JobStatusDone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			names := make([]string, 0, tc.items)
			for i := range tc.items {
				names = append(names, "item_prime_"+string(rune('a'+i)))
			}

			market := &fakeMarket{gate: make(chan struct{})}
			engine := worker.NewEngine(market, nil, nil, jobsConfig())

			jobID := engine.Submit(context.Background(), items(names...), constraints, tc.batchSize)

			rq.Eventually(func() bool {
				return market.calls.Load() == int32(tc.batchSize)
			}, 5*time.Second, 5*time.Millisecond)

			rq.NoError(engine.Cancel(jobID))
			close(market.gate)

			job := waitTerminal(t, engine, jobID)

			rq.Equal(tc.wantStatus, job.Status)
			rq.True(job.Cancelled)
			rq.Equal(tc.batchSize, job.Progress)
			rq.Zero(job.Progress % tc.batchSize)
			rq.LessOrEqual(job.Progress, job.Total)
			rq.Equal(int32(tc.batchSize), market.calls.Load())

			// cancelling a finished job is a no-op
			rq.NoError(engine.Cancel(jobID))
		})
	}
}

func TestEngineCancelDuringCooldown(t *testing.T) {
	rq := require.New(t)

	cooldown := &fakeCooldown{}
	cooldown.remaining.Store(int64(time.Hour))

	market := &fakeMarket{}
	engine := worker.NewEngine(market, cooldown, nil, jobsConfig())

	jobID := engine.Submit(context.Background(), items("ash_prime_set"), constraints, 1)

	job, err := engine.Poll(jobID)
	rq.NoError(err)
	rq.Equal(entity.JobStatusRunning, job.Status)

	rq.Equal(1, engine.CancelAll())

	job = waitTerminal(t, engine, jobID)
	rq.Equal(entity.JobStatusCancelled, job.Status)
	rq.Zero(job.Progress)
	rq.Zero(market.calls.Load())
}

func TestEnginePanickingItemFailsJob(t *testing.T) {
	rq := require.New(t)

	market := &fakeMarket{
		orders: map[string][]entity.Order{
			"ash_prime_set":  profitable(),
			"loki_prime_set": profitable(),
		},
		broken: map[string]bool{"bad_prime_set": true},
	}
	metrics := &recordedMetrics{}

	engine := worker.NewEngine(market, &fakeCooldown{}, metrics, jobsConfig())

	jobID := engine.Submit(context.Background(), items("ash_prime_set", "bad_prime_set", "loki_prime_set"), constraints, 1)

	job := waitTerminal(t, engine, jobID)
	rq.Equal(entity.JobStatusFailed, job.Status)
	rq.Contains(job.Error, "bad_prime_set")
	rq.Equal(1, job.Progress)
	rq.Len(job.Results, 1)
	rq.Equal("ash_prime_set", job.Results[0].URLName)
	rq.EqualValues(2, market.calls.Load())

	metrics.mu.Lock()
	rq.Equal([]string{string(entity.JobStatusFailed)}, metrics.finished)
	metrics.mu.Unlock()

	// the engine keeps serving jobs after a failed one
	next := waitTerminal(t, engine, engine.Submit(context.Background(), items("loki_prime_set"), constraints, 1))
	rq.Equal(entity.JobStatusDone, next.Status)
}

func TestEngineNotFound(t *testing.T) {
	rq := require.New(t)

	engine := worker.NewEngine(&fakeMarket{}, nil, nil, jobsConfig())

	_, err := engine.Poll("missing")
	rq.True(errors.Is(err, worker.ErrJobNotFound))
	rq.True(domain.HasCode(err, errcodes.JobNotFound))

	rq.ErrorIs(engine.Cancel("missing"), worker.ErrJobNotFound)
}

func TestEngineEvictsFinishedJobs(t *testing.T) {
	rq := require.New(t)

	cfg := jobsConfig()
	cfg.TTL = 100 * time.Millisecond

	engine := worker.NewEngine(&fakeMarket{}, nil, nil, cfg)

	jobID := engine.Submit(context.Background(), nil, constraints, 1)

	rq.Eventually(func() bool {
		_, err := engine.Poll(jobID)
		return errors.Is(err, worker.ErrJobNotFound)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestEngineShutdown(t *testing.T) {
	rq := require.New(t)

	cooldown := &fakeCooldown{}
	cooldown.remaining.Store(int64(time.Hour))

	engine := worker.NewEngine(&fakeMarket{}, cooldown, nil, jobsConfig())

	first := engine.Submit(context.Background(), items("a_prime"), constraints, 1)
	second := engine.Submit(context.Background(), items("b_prime"), constraints, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rq.NoError(engine.Shutdown(ctx))

	for _, id := range []string{first, second} {
		job, err := engine.Poll(id)
		rq.NoError(err)
		rq.Equal(entity.JobStatusCancelled, job.Status)
	}
}

func TestEngineCandidates(t *testing.T) {
	rq := require.New(t)

	market := &fakeMarket{catalog: []entity.Item{
		{ID: "1", Name: "Ash Prime Set", URLName: "ash_prime_set"},
		{ID: "2", Name: "Serration", URLName: "serration"},
		{ID: "3", Name: "Soma PRIME Barrel", URLName: "soma_prime_barrel"},
	}}

	testCases := []struct {
		name      string
		primeOnly bool
		items     []entity.Item
		want      []string
	}{
		{
			name:      "Catalog narrowed to prime items",
			primeOnly: true,
			want:      []string{"1", "3"},
		},
		{
			name: "Whole catalog",
			want: []string{"1", "2", "3"},
		},
		{
			name:      "Given items are filtered too",
			primeOnly: true,
			items:     []entity.Item{{ID: "9", Name: "Vitality"}, {ID: "8", Name: "Rhino Prime Set"}},
			want:      []string{"8"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			cfg := jobsConfig()
			cfg.PrimeOnly = tc.primeOnly

			engine := worker.NewEngine(market, nil, nil, cfg)

			candidates, err := engine.Candidates(context.Background(), tc.items)
			rq.NoError(err)

			ids := make([]string, 0, len(candidates))
			for _, item := range candidates {
				ids = append(ids, item.ID)
			}

			rq.Equal(tc.want, ids)
		})
	}
}

func TestEngineBatchSize(t *testing.T) {
	rq := require.New(t)

	engine := worker.NewEngine(&fakeMarket{}, nil, nil, jobsConfig())

	testCases := []struct {
		requested int
		want      int
	}{
		{requested: 0, want: 3},
		{requested: -2, want: 3},
		{requested: 5, want: 5},
		{requested: 50, want: 10},
	}

	for _, tc := range testCases {
		rq.Equal(tc.want, engine.BatchSize(tc.requested))
	}
}
