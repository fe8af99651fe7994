// Package poller runs a function on a fixed interval for exactly as long as
// its owner wants it to. Ticks execute strictly sequentially in one
// goroutine, so a slow or late tick can never apply results after a stop.
package poller

import (
	"context"
	"time"
)

// Stop is returned by a tick function to end the poller from within, the
// terminal-state transition case. Any other error also ends the run and is
// reported to the caller of Wait.
//
//nolint:errname
var Stop = stopError{}

type stopError struct{}

func (stopError) Error() string {
	return "poller stopped"
}

type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start runs tick immediately and then on every interval until the context
// ends, Cancel is called, or tick returns a non-nil error.
func Start(ctx context.Context, interval time.Duration, tick func(ctx context.Context) error) *Poller {
	ctx, cancel := context.WithCancel(ctx)

	p := &Poller{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go p.run(ctx, interval, tick)

	return p
}

func (p *Poller) run(ctx context.Context, interval time.Duration, tick func(ctx context.Context) error) {
	defer close(p.done)
	defer p.cancel()

	if err := tick(ctx); err != nil {
		p.err = err

		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tick(ctx); err != nil {
				p.err = err

				return
			}
		}
	}
}

// Cancel stops the poller. Safe to call more than once and after the poller
// already finished.
func (p *Poller) Cancel() {
	p.cancel()
}

// Wait blocks until the loop has fully exited and reports why it stopped.
// A nil result means cancellation; Stop means the tick function ended it.
func (p *Poller) Wait() error {
	<-p.done

	return p.err
}

// Done is closed once no further tick can run.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
