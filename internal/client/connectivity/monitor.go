// Package connectivity watches whether the remote store is reachable.
package connectivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/events"
	"github.com/dmitrijs2005/giftkeeper/internal/logging"
)

// Pinger is satisfied by the remote client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor pings the remote store periodically and publishes online/offline
// transitions. It starts offline until the first successful check.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger
	online   atomic.Bool
	bus      *events.Bus[bool]
}

func NewMonitor(p Pinger, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		pinger:   p,
		interval: interval,
		log:      log,
		bus:      events.NewBus[bool](),
	}
}

func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// Check pings once, records the result and returns it.
func (m *Monitor) Check(ctx context.Context) bool {
	err := m.pinger.Ping(ctx)
	now := err == nil
	if was := m.online.Swap(now); was != now {
		if now {
			m.log.Info(ctx, "remote store reachable")
		} else {
			m.log.Warn(ctx, "remote store unreachable", "error", err)
		}
		m.bus.Publish(now)
	}
	return now
}

// Subscribe delivers true on offline→online and false on online→offline.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	return m.bus.Subscribe(4)
}

// Run checks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	if m.interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
