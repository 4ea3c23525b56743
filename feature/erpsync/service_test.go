package erpsync

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"device-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	calls   atomic.Int32
	release chan struct{}
	result  func(kinds []reconcile.RecordKind) *reconcile.SyncResult
}

func (f *fakeSyncer) Synchronize(ctx context.Context, kinds ...reconcile.RecordKind) *reconcile.SyncResult {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.result != nil {
		return f.result(kinds)
	}
	res := reconcile.NewResult(kinds...)
	res.StartedAt = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	res.FinishedAt = res.StartedAt.Add(time.Second)
	return res
}

func TestService_SynchronizeStoresLast(t *testing.T) {
	svc := NewService(&fakeSyncer{}, nil, nil)
	assert.Nil(t, svc.Last())

	run := svc.Synchronize(context.Background(), []reconcile.RecordKind{reconcile.KindOrder}, TriggerAPI)

	require.NotNil(t, run)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, TriggerAPI, run.Trigger)
	assert.True(t, run.Result.OverallSuccess)
	assert.Same(t, run, svc.Last())
}

func TestService_CoalescesConcurrentRuns(t *testing.T) {
	syncer := &fakeSyncer{release: make(chan struct{})}
	svc := NewService(syncer, nil, nil)

	const callers = 5
	runs := make([]*Run, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Same kind set in a different order.
			kinds := []reconcile.RecordKind{reconcile.KindProduct, reconcile.KindCustomer}
			if i%2 == 0 {
				kinds = []reconcile.RecordKind{reconcile.KindCustomer, reconcile.KindProduct, reconcile.KindCustomer}
			}
			runs[i] = svc.Synchronize(context.Background(), kinds, TriggerAPI)
		}(i)
	}

	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Let the other callers join the in-flight run.
	time.Sleep(20 * time.Millisecond)
	close(syncer.release)
	wg.Wait()

	assert.Equal(t, int32(1), syncer.calls.Load())
	for _, r := range runs {
		assert.Same(t, runs[0], r)
	}
}

func TestRunKey(t *testing.T) {
	all := runKey(nil)
	assert.Equal(t, all, runKey([]reconcile.RecordKind{reconcile.KindProduct, reconcile.KindOrder, reconcile.KindCustomer}))
	assert.Equal(t, "orders,clients", runKey([]reconcile.RecordKind{reconcile.KindCustomer, reconcile.KindOrder}))
	assert.Equal(t, "orders,!readers", runKey([]reconcile.RecordKind{"readers", reconcile.KindOrder}))
}
