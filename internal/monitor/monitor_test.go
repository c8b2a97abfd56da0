package monitor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/chequelab/carteira/internal/monitor"
)

func TestMonitorFlagsTransitions(t *testing.T) {
	var mu sync.Mutex
	var transitions []bool
	fail := false

	pings := make(chan struct{}, 16)
	ping := func(context.Context) error {
		mu.Lock()
		shouldFail := fail
		mu.Unlock()
		select {
		case pings <- struct{}{}:
		default:
		}
		if shouldFail {
			return errors.New("unreachable")
		}
		return nil
	}

	m := monitor.New(5*time.Millisecond, ping, func(online bool) {
		mu.Lock()
		transitions = append(transitions, online)
		mu.Unlock()
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// First ping succeeds: offline -> online.
	<-pings
	assert.Eventually(t, m.Online, time.Second, time.Millisecond)

	// Break the backend: online -> offline.
	mu.Lock()
	fail = true
	mu.Unlock()
	assert.Eventually(t, func() bool { return !m.Online() }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on context cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(transitions), 2)
	assert.True(t, transitions[0], "first transition should be to online")
	assert.False(t, transitions[1], "second transition should be to offline")
}
