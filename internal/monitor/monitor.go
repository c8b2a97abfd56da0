// Package monitor tracks backend connectivity by pinging the public root
// route on a fixed interval.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Pinger hits the backend's public root route.
type Pinger func(ctx context.Context) error

// Monitor pings the backend periodically and keeps a connectivity flag.
// Safe for concurrent reads while running.
type Monitor struct {
	interval time.Duration
	ping     Pinger
	logger   zerolog.Logger

	online   atomic.Bool
	onChange func(online bool)
}

// New creates a connectivity monitor. onChange may be nil; when set it is
// called from the monitor goroutine on every connectivity transition.
func New(interval time.Duration, ping Pinger, onChange func(bool), logger zerolog.Logger) *Monitor {
	return &Monitor{
		interval: interval,
		ping:     ping,
		onChange: onChange,
		logger:   logger,
	}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Run pings until the context is cancelled. The first ping fires
// immediately, then one per interval.
func (m *Monitor) Run(ctx context.Context) {
	b := backoff.WithContext(backoff.NewConstantBackOff(m.interval), ctx)
	ticker := backoff.NewTicker(b)
	defer ticker.Stop()

	for range ticker.C {
		err := m.ping(ctx)
		m.update(err == nil)

		if ctx.Err() != nil {
			return
		}
	}
}

func (m *Monitor) update(online bool) {
	previous := m.online.Swap(online)
	if previous == online {
		return
	}

	if online {
		m.logger.Info().Msg("backend reachable")
	} else {
		m.logger.Warn().Msg("backend unreachable")
	}
	if m.onChange != nil {
		m.onChange(online)
	}
}
