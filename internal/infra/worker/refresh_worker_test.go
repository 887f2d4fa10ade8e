package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) usecase.RefreshResult {
	c.calls.Add(1)
	if c.err != nil {
		return usecase.RefreshResult{Source: usecase.LeadSourceMemory, Err: c.err}
	}
	return usecase.RefreshResult{Source: usecase.LeadSourceServer}
}

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (c *countingLoader) Execute(ctx context.Context) (usecase.AggregateResult, error) {
	c.calls.Add(1)
	return usecase.AggregateResult{}, c.err
}

func TestRefreshWorkerRunsImmediatelyAndOnTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	leads := &countingRefresher{}
	convs := &countingLoader{}
	w := NewRefreshWorker(leads, convs, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return leads.calls.Load() >= 3 && convs.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

func TestRefreshWorkerRunOnceToleratesFailures(t *testing.T) {
	leads := &countingRefresher{err: errors.New("backend down")}
	convs := &countingLoader{err: usecase.ErrFetchTimeout}

	core, logs := observer.New(zapcore.WarnLevel)
	NewRefreshWorker(leads, convs, time.Minute, zap.New(core)).RunOnce(context.Background())

	assert.EqualValues(t, 1, leads.calls.Load())
	assert.EqualValues(t, 1, convs.calls.Load())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "lead refresh served a fallback list", entries[0].Message)
	assert.Equal(t, "memory", entries[0].ContextMap()["source"])
	assert.Equal(t, "conversation refresh failed", entries[1].Message)
}

func TestRefreshWorkerSkipsConversationsWhenCancelled(t *testing.T) {
	leads := &countingRefresher{}
	convs := &countingLoader{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewRefreshWorker(leads, convs, time.Minute, nil).RunOnce(ctx)

	assert.EqualValues(t, 1, leads.calls.Load())
	assert.Zero(t, convs.calls.Load())
}
