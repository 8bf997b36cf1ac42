// Package progress follows a backend import job until it finishes.
package progress

import (
	"context"
	"io"
	"time"

	"dataimport/internal/model"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the delay between two progress requests.
const DefaultInterval = time.Second

// Fetcher returns the current state of a job. *client.Client implements it.
type Fetcher interface {
	ImportProgress(ctx context.Context, jobID string) (model.Progress, error)
}

// Poller polls a Fetcher at a fixed interval.
type Poller struct {
	fetch    Fetcher
	interval time.Duration
	log      logrus.FieldLogger
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets where failed polls are reported.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Poller) { p.log = l }
}

// NewPoller returns a poller over f.
func NewPoller(f Fetcher, opts ...Option) *Poller {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	p := &Poller{fetch: f, interval: DefaultInterval, log: discard}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll streams the job's progress. The first request is sent immediately.
// Failed requests are logged and retried on the next tick; they never end
// polling. The channel is closed after a terminal status has been sent or
// when ctx is done.
func (p *Poller) Poll(ctx context.Context, jobID string) <-chan model.Progress {
	updates := make(chan model.Progress)

	go func() {
		defer close(updates)
		log := p.log.WithField("job", jobID)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			prog, err := p.fetch.ImportProgress(ctx, jobID)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				log.WithError(err).Warn("Progress poll failed, retrying")
			default:
				select {
				case updates <- prog:
				case <-ctx.Done():
					return
				}
				if prog.Status.Terminal() {
					log.WithField("status", prog.Status).Info("Import finished")
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates
}

// ErrImportFailed wraps the backend message of a job that ended in error.
var ErrImportFailed = errors.New("import failed")

// Wait polls until the job finishes, calling onUpdate for every update.
// It returns the final progress, ErrImportFailed for an error status, or the
// context error when ctx ends first.
func (p *Poller) Wait(ctx context.Context, jobID string, onUpdate func(model.Progress)) (model.Progress, error) {
	var last model.Progress
	for prog := range p.Poll(ctx, jobID) {
		last = prog
		if onUpdate != nil {
			onUpdate(prog)
		}
	}
	switch {
	case last.Status == model.StatusDone:
		return last, nil
	case last.Status == model.StatusError:
		return last, errors.Wrap(ErrImportFailed, last.Describe())
	case ctx.Err() != nil:
		return last, ctx.Err()
	}
	return last, errors.New("polling stopped before the import finished")
}
