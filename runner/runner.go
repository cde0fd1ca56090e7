// Package runner executes risk-generation jobs in the background and
// keeps their statuses queryable by an opaque key.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job statuses reported by Status.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is the unit of background work. The returned value becomes the
// status record's result on success.
type Job func(ctx context.Context) (interface{}, error)

// JobStatus is the externally visible state of a submitted job.
type JobStatus struct {
	Key            string      `json:"key"`
	Status         string      `json:"status"`
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	ProcessingTime string      `json:"processing_time,omitempty"`
	Result         interface{} `json:"result,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// Runner runs jobs on a bounded pool of workers. A key identifies at
// most one in-flight job; re-submitting while that job runs is a no-op.
// Finished jobs stay queryable until evicted from the bounded history.
type Runner struct {
	mu      sync.Mutex
	active  map[string]*JobStatus
	done    map[string]*JobStatus
	order   []string // completion order, oldest first
	keep    int
	sem     chan struct{}
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	Now     func() time.Time
}

func New(workers, history int) *Runner {
	if workers < 1 {
		workers = 1
	}
	if history < 1 {
		history = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		active:  make(map[string]*JobStatus),
		done:    make(map[string]*JobStatus),
		keep:    history,
		sem:     make(chan struct{}, workers),
		baseCtx: ctx,
		cancel:  cancel,
		Now:     time.Now,
	}
}

// Submit starts job under key. It returns false when a job with the
// same key is already running; the caller reports that as
// "already_running" rather than queueing a duplicate.
func (r *Runner) Submit(key string, job Job) bool {
	r.mu.Lock()
	if _, running := r.active[key]; running {
		r.mu.Unlock()
		return false
	}
	st := &JobStatus{Key: key, Status: StatusProcessing, StartedAt: r.Now()}
	r.active[key] = st
	delete(r.done, key)
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(key, st, job)
	return true
}

func (r *Runner) run(key string, st *JobStatus, job Job) {
	defer r.wg.Done()

	select {
	case r.sem <- struct{}{}:
	case <-r.baseCtx.Done():
		r.finish(key, st, nil, r.baseCtx.Err())
		return
	}
	defer func() { <-r.sem }()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("key", key).Msg("background job panicked")
			r.finish(key, st, nil, &panicError{rec})
		}
	}()

	result, err := job(r.baseCtx)
	r.finish(key, st, result, err)
}

func (r *Runner) finish(key string, st *JobStatus, result interface{}, err error) {
	now := r.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	st.CompletedAt = &now
	st.ProcessingTime = now.Sub(st.StartedAt).Round(time.Millisecond).String()
	if err != nil {
		st.Status = StatusFailed
		st.Error = err.Error()
	} else {
		st.Status = StatusCompleted
		st.Result = result
	}

	delete(r.active, key)
	r.done[key] = st
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.order = append(r.order, key)
	for len(r.order) > r.keep {
		evict := r.order[0]
		r.order = r.order[1:]
		delete(r.done, evict)
	}
}

// Status returns the job state for key, active jobs first. Active jobs
// report their elapsed time so far as the processing time. The second
// return is false when the key is unknown or already evicted.
func (r *Runner) Status(key string) (JobStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.active[key]; ok {
		cp := *st
		cp.ProcessingTime = r.Now().Sub(st.StartedAt).Round(time.Millisecond).String()
		return cp, true
	}
	if st, ok := r.done[key]; ok {
		return *st, true
	}
	return JobStatus{}, false
}

// Shutdown cancels the base context handed to jobs and waits for
// in-flight workers to drain.
func (r *Runner) Shutdown() {
	r.cancel()
	r.wg.Wait()
}

type panicError struct {
	value interface{}
}

func (p *panicError) Error() string {
	return "job panicked"
}
