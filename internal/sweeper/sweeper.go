// Package sweeper implements the AutoDisconnectSweeper: a background task
// that periodically prunes expired clients and hangs up an idle link. Its
// loop shape (cancellable ticker, select over ctx.Done()) mirrors the
// agent's own heartbeat/ping loops.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/landialler/landiallerd/logger"
)

// DefaultInterval is the sweep tick rate used when the caller doesn't
// override it.
const DefaultInterval = 5 * time.Second

// proxy is the subset of *proxy.ModemProxy the sweeper depends on.
type proxy interface {
	RemoveOldClients(ctx context.Context)
	CountClients() int
	IsConnected(ctx context.Context) bool
	HangUp(ctx context.Context) bool
}

// Sweeper runs RemoveOldClients on a fixed interval until its context is
// cancelled. It is a background-priority task: Run returns once the context
// is done, after finishing at most the tick already in progress.
type Sweeper struct {
	proxy    proxy
	interval time.Duration
	log      logger.Logger
	setState func(string)
}

// New constructs a Sweeper over the given proxy. setState, if non-nil, is
// called after every tick with a human-readable summary, for the status
// page (it may be nil in tests).
func New(p proxy, interval time.Duration, log logger.Logger, setState func(string)) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{proxy: p, interval: interval, log: log, setState: setState}
}

// Run blocks, ticking every interval, until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("[Sweeper] context cancelled, stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	s.proxy.RemoveOldClients(ctx)

	count := s.proxy.CountClients()
	connected := s.proxy.IsConnected(ctx)

	// RemoveOldClients already hangs up when it finds the registry empty
	// and the modem connected; this belt-and-braces check probes again
	// and issues another hang-up if the modem still reports connected
	// with no clients (e.g. after a hang-up command that failed).
	if count == 0 && connected {
		s.proxy.HangUp(ctx)
	}

	if s.setState != nil {
		s.setState(summarize(count, connected))
	}
	s.log.Debug("[Sweeper] tick: clients=%d connected=%v", count, connected)
}

func summarize(count int, connected bool) string {
	if connected {
		return fmt.Sprintf("connected, clients=%d", count)
	}
	return fmt.Sprintf("idle, clients=%d", count)
}
