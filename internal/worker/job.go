package worker

import (
	"sync"
	"time"

	"wfm_flipper/internal/domain/entity"
)

// job is the engine-owned record behind a job id. Pollers only ever see
// copies of state.
type job struct {
	mu    sync.Mutex
	state entity.Job

	cancelOnce sync.Once
	cancelCh   chan struct{}
}

func (j *job) id() string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.state.ID
}

func (j *job) constraints() entity.Constraints {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.state.Constraints
}

func (j *job) snapshot() entity.Job {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := j.state
	snap.Results = append([]entity.Opportunity{}, j.state.Results...)

	return snap
}

// cancel flags a running job and reports whether it did.
func (j *job) cancel() bool {
	j.mu.Lock()
	if j.state.Status.IsTerminal() || j.state.Cancelled {
		j.mu.Unlock()
		return false
	}

	j.state.Cancelled = true
	j.mu.Unlock()

	j.cancelOnce.Do(func() { close(j.cancelCh) })

	return true
}

func (j *job) isCancelled() bool {
	select {
	case <-j.cancelCh:
		return true
	default:
		return false
	}
}

func (j *job) advance(items int, found []entity.Opportunity, failed int, now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.state.Progress = min(j.state.Progress+items, j.state.Total)
	j.state.Results = append(j.state.Results, found...)
	j.state.FailedItems += failed
	j.state.UpdatedAt = now

	return j.state.Progress
}

// finish moves the job to a terminal status once; later calls are ignored.
func (j *job) finish(status entity.JobStatus, message string, now time.Time) (entity.Job, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Status.IsTerminal() {
		return entity.Job{}, false
	}

	j.state.Status = status
	j.state.Error = message
	j.state.UpdatedAt = now

	snap := j.state
	snap.Results = append([]entity.Opportunity{}, j.state.Results...)

	return snap, true
}
