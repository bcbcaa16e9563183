package navigator

import (
	"context"
	"sync"
	"time"

	"visitbook/internal/availability"
)

// Pending is an issued month load.
type Pending struct {
	seq   uint64
	year  int
	month time.Month

	once sync.Once
	done chan struct{}
	view *availability.MonthView
	err  error
}

func newPending(seq uint64, year int, month time.Month) *Pending {
	return &Pending{seq: seq, year: year, month: month, done: make(chan struct{})}
}

// Sequence returns the request number.
func (p *Pending) Sequence() uint64 {
	return p.seq
}

// Target returns the requested month.
func (p *Pending) Target() (int, time.Month) {
	return p.year, p.month
}

// Done is closed once the load was applied or discarded.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the load finished and returns the applied view or ErrSuperseded.
func (p *Pending) Wait(ctx context.Context) (*availability.MonthView, error) {
	select {
	case <-p.done:
		return p.view, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pending) resolve(view *availability.MonthView, err error) {
	p.once.Do(func() {
		p.view = view
		p.err = err
		close(p.done)
	})
}
