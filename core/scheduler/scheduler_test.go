package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Disabled(t *testing.T) {
	var runs atomic.Int32
	s := New(Config{}, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Zero(t, runs.Load())
}

func TestScheduler_RunOnStartAndStop(t *testing.T) {
	var runs atomic.Int32
	s := New(Config{Interval: time.Hour, RunOnStart: true}, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_Ticks(t *testing.T) {
	var runs atomic.Int32
	s := New(Config{Interval: 10 * time.Millisecond}, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("erp unavailable")
	}, nil)

	go s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(Config{Interval: time.Hour}, func(ctx context.Context) error { return nil }, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
