package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, r *Runner, key, want string) JobStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if st, ok := r.Status(key); ok && st.Status == want {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %q never reached status %q", key, want)
	return JobStatus{}
}

func TestSubmitAndComplete(t *testing.T) {
	r := New(2, 10)
	defer r.Shutdown()

	ok := r.Submit("job-1", func(ctx context.Context) (interface{}, error) {
		return "done", nil
	})
	require.True(t, ok)

	st := waitForStatus(t, r, "job-1", StatusCompleted)
	assert.Equal(t, "done", st.Result)
	assert.NotNil(t, st.CompletedAt)
	assert.NotEmpty(t, st.ProcessingTime)
}

func TestStatusReportsElapsedTimeWhileRunning(t *testing.T) {
	r := New(1, 10)
	defer r.Shutdown()

	base := time.Now()
	r.Now = func() time.Time { return base }

	release := make(chan struct{})
	require.True(t, r.Submit("slow", func(ctx context.Context) (interface{}, error) {
		<-release
		return nil, nil
	}))

	r.Now = func() time.Time { return base.Add(1500 * time.Millisecond) }
	st, ok := r.Status("slow")
	require.True(t, ok)
	assert.Equal(t, StatusProcessing, st.Status)
	assert.Equal(t, "1.5s", st.ProcessingTime)
	assert.Nil(t, st.CompletedAt)

	close(release)
	st = waitForStatus(t, r, "slow", StatusCompleted)
	assert.Equal(t, "1.5s", st.ProcessingTime)
}

func TestSubmitFailure(t *testing.T) {
	r := New(1, 10)
	defer r.Shutdown()

	r.Submit("bad", func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("completer melted")
	})

	st := waitForStatus(t, r, "bad", StatusFailed)
	assert.Equal(t, "completer melted", st.Error)
	assert.Nil(t, st.Result)
}

// Two concurrent submits for one key: exactly one starts.
func TestConcurrentSubmitIdempotence(t *testing.T) {
	r := New(4, 10)
	defer r.Shutdown()

	release := make(chan struct{})
	job := func(ctx context.Context) (interface{}, error) {
		<-release
		return nil, nil
	}

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Submit("contended", job) {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, started)

	close(release)
	waitForStatus(t, r, "contended", StatusCompleted)
}

func TestResubmitAfterCompletion(t *testing.T) {
	r := New(1, 10)
	defer r.Shutdown()

	require.True(t, r.Submit("again", func(ctx context.Context) (interface{}, error) { return 1, nil }))
	waitForStatus(t, r, "again", StatusCompleted)

	require.True(t, r.Submit("again", func(ctx context.Context) (interface{}, error) { return 2, nil }))
	st := waitForStatus(t, r, "again", StatusCompleted)
	assert.Equal(t, 2, st.Result)
}

func TestUnknownKey(t *testing.T) {
	r := New(1, 10)
	defer r.Shutdown()
	_, ok := r.Status("never-submitted")
	assert.False(t, ok)
}

func TestHistoryBound(t *testing.T) {
	const keep = 5
	r := New(2, keep)
	defer r.Shutdown()

	for i := 0; i < keep*3; i++ {
		key := fmt.Sprintf("job-%02d", i)
		require.True(t, r.Submit(key, func(ctx context.Context) (interface{}, error) { return nil, nil }))
		waitForStatus(t, r, key, StatusCompleted)
	}

	retained := 0
	for i := 0; i < keep*3; i++ {
		if _, ok := r.Status(fmt.Sprintf("job-%02d", i)); ok {
			retained++
		}
	}
	assert.Equal(t, keep, retained)

	// The most recent completions survive.
	for i := keep*3 - keep; i < keep*3; i++ {
		_, ok := r.Status(fmt.Sprintf("job-%02d", i))
		assert.True(t, ok, "job-%02d", i)
	}
}

func TestPanickingJobIsIsolated(t *testing.T) {
	r := New(1, 10)
	defer r.Shutdown()

	r.Submit("explosive", func(ctx context.Context) (interface{}, error) {
		panic("boom")
	})
	st := waitForStatus(t, r, "explosive", StatusFailed)
	assert.NotEmpty(t, st.Error)

	// The worker slot is released for later jobs.
	require.True(t, r.Submit("next", func(ctx context.Context) (interface{}, error) { return nil, nil }))
	waitForStatus(t, r, "next", StatusCompleted)
}
