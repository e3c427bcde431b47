package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeRunner struct {
	calls   atomic.Int64
	block   chan struct{}
	started chan struct{}
}

func (r *fakeRunner) RunCycle(_ context.Context) (*models.SyncResult, error) {
	r.calls.Add(1)
	if r.started != nil {
		select {
		case r.started <- struct{}{}:
		default:
		}
	}
	if r.block != nil {
		<-r.block
	}
	return &models.SyncResult{SettlementID: "settlement-1"}, nil
}

func TestPoller_RunsImmediatelyOnStart(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}, 1)}
	p := New(runner, nil, Config{SettlementID: "settlement-1", Interval: time.Hour}, testLogger())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate cycle on start")
	}
	assert.Equal(t, int64(1), runner.calls.Load())
}

func TestPoller_StartTwiceFails(t *testing.T) {
	runner := &fakeRunner{}
	p := New(runner, nil, Config{SettlementID: "settlement-1", Interval: time.Hour}, testLogger())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	assert.ErrorIs(t, p.Start(context.Background()), ErrPollerAlreadyRunning)
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	runner := &fakeRunner{}
	p := New(runner, nil, Config{SettlementID: "settlement-1", Interval: time.Hour}, testLogger())

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
	assert.False(t, p.IsRunning())
}

func TestPoller_TicksRunCycles(t *testing.T) {
	runner := &fakeRunner{}
	p := New(runner, nil, Config{SettlementID: "settlement-1", Interval: 10 * time.Millisecond}, testLogger())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestPoller_OverlapGuardSkipsTicks(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	p := New(runner, nil, Config{SettlementID: "settlement-1", Interval: 10 * time.Millisecond}, testLogger())

	require.NoError(t, p.Start(context.Background()))

	// First cycle starts and blocks; subsequent ticks must be skipped
	<-runner.started
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), runner.calls.Load())

	close(runner.block)
	require.NoError(t, p.Stop(context.Background()))
}

func TestPoller_DefaultsApplied(t *testing.T) {
	p := New(&fakeRunner{}, nil, Config{SettlementID: "settlement-1"}, testLogger())
	assert.Equal(t, DefaultInterval, p.config.Interval)
	assert.Equal(t, DefaultLockTTL, p.config.LockTTL)
}
