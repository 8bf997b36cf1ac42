package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"dataimport/internal/model"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	prog model.Progress
	err  error
}

type scripted struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (s *scripted) ImportProgress(ctx context.Context, jobID string) (model.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.steps) == 0 {
		return model.Progress{Status: model.StatusRunning}, nil
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.prog, st.err
}

func collect(ch <-chan model.Progress) []model.Progress {
	var out []model.Progress
	for p := range ch {
		out = append(out, p)
	}
	return out
}

func TestPollStopsOnDone(t *testing.T) {
	f := &scripted{steps: []step{
		{prog: model.Progress{Status: model.StatusRunning, Processed: 1, Total: 3}},
		{prog: model.Progress{Status: model.StatusRunning, Processed: 2, Total: 3}},
		{prog: model.Progress{Status: model.StatusDone, Processed: 3, Total: 3}},
	}}
	p := NewPoller(f, WithInterval(time.Millisecond))

	got := collect(p.Poll(context.Background(), "job"))

	require.Len(t, got, 3)
	assert.Equal(t, model.StatusDone, got[2].Status)
	assert.Equal(t, 3, f.calls)
}

func TestPollRetriesTransientErrors(t *testing.T) {
	f := &scripted{steps: []step{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{prog: model.Progress{Status: model.StatusError, Message: "bad header in a.csv"}},
	}}
	p := NewPoller(f, WithInterval(time.Millisecond))

	got := collect(p.Poll(context.Background(), "job"))

	require.Len(t, got, 1, "failed polls are not surfaced")
	assert.Equal(t, "bad header in a.csv", got[0].Message)
}

func TestPollStopsOnCancel(t *testing.T) {
	f := &scripted{}
	p := NewPoller(f, WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	ch := p.Poll(ctx, "job")
	<-ch
	cancel()

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestWait(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		f := &scripted{steps: []step{
			{prog: model.Progress{Status: model.StatusRunning, Processed: 1, Total: 2}},
			{prog: model.Progress{Status: model.StatusDone, Processed: 2, Total: 2}},
		}}
		var seen int
		last, err := NewPoller(f, WithInterval(time.Millisecond)).Wait(context.Background(), "job", func(model.Progress) { seen++ })

		require.NoError(t, err)
		assert.Equal(t, 2, seen)
		assert.Equal(t, 1.0, last.Percent())
	})

	t.Run("error status", func(t *testing.T) {
		f := &scripted{steps: []step{{prog: model.Progress{Status: model.StatusError, Message: "disk full"}}}}
		_, err := NewPoller(f, WithInterval(time.Millisecond)).Wait(context.Background(), "job", nil)

		assert.ErrorIs(t, err, ErrImportFailed)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := NewPoller(&scripted{}, WithInterval(time.Millisecond)).Wait(ctx, "job", nil)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewPoller(&scripted{}, WithInterval(0))
	assert.Equal(t, DefaultInterval, p.interval)
}
