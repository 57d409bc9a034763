// Package watchdog polls the robot controller endpoints on a fixed
// interval and publishes explicit connectivity snapshots. Consumers receive
// a Status value instead of reading mutable globals.
package watchdog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mkarras/robochess/internal/obslog"
)

// Endpoint is one side of the board's controller surface.
type Endpoint interface {
	Name() string
	Ping(ctx context.Context) bool
	EnsureConnected(ctx context.Context) bool
}

// Status is one connectivity snapshot.
type Status struct {
	Online    map[string]bool
	AllOnline bool
	CheckedAt time.Time
}

// Watchdog polls its endpoints and hands each snapshot to onStatus.
type Watchdog struct {
	endpoints []Endpoint
	interval  time.Duration
	onStatus  func(Status)
	last      map[string]bool
}

func New(endpoints []Endpoint, interval time.Duration, onStatus func(Status)) *Watchdog {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watchdog{
		endpoints: endpoints,
		interval:  interval,
		onStatus:  onStatus,
		last:      make(map[string]bool, len(endpoints)),
	}
}

// Run polls until ctx is done. The first poll happens immediately so the
// coordinator starts with a real snapshot instead of assuming connectivity.
func (w *Watchdog) Run(ctx context.Context) {
	w.poll(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// Poll runs one connectivity pass and returns the snapshot. Exposed for
// callers that want a synchronous check outside the Run loop.
func (w *Watchdog) Poll(ctx context.Context) Status {
	return w.poll(ctx)
}

func (w *Watchdog) poll(ctx context.Context) Status {
	st := Status{
		Online:    make(map[string]bool, len(w.endpoints)),
		AllOnline: true,
		CheckedAt: time.Now(),
	}
	for _, ep := range w.endpoints {
		online := ep.Ping(ctx)
		if !online {
			online = ep.EnsureConnected(ctx)
		}
		st.Online[ep.Name()] = online
		if !online {
			st.AllOnline = false
		}
		if prev, seen := w.last[ep.Name()]; !seen || prev != online {
			obslog.L().Info("endpoint_connectivity",
				zap.String("endpoint", ep.Name()),
				zap.Bool("online", online),
			)
		}
		w.last[ep.Name()] = online
	}
	if w.onStatus != nil {
		w.onStatus(st)
	}
	return st
}
