package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunReaperSweepsAndStops(t *testing.T) {
	var sweeps atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runReaper(ctx, 5*time.Millisecond, func() { sweeps.Add(1) })
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeps.Load() >= 2 },
		time.Second, time.Millisecond, "sweep runs on every tick")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper kept running after context cancel")
	}

	n := sweeps.Load()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, n, sweeps.Load(), "no sweeps after shutdown")
}

func TestRunReaperStopsBeforeFirstTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		runReaper(ctx, time.Hour, func() { t.Error("sweep ran on a cancelled context") })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not observe the cancelled context")
	}
}
