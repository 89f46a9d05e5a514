package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// TestRunner_RunsImmediatelyAndPeriodically проверяет немедленный запуск
// задачи при старте и последующие запуски по интервалу
func TestRunner_RunsImmediatelyAndPeriodically(t *testing.T) {
	var runs atomic.Int32
	job := &Job{
		Name:     "test",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) {
			runs.Add(1)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(newNoopLogger(), job)

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	time.Sleep(70 * time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

// TestRunner_SkipsOverlappingRun проверяет, что медленный запуск не
// накладывается на следующий тик той же задачи
func TestRunner_SkipsOverlappingRun(t *testing.T) {
	var (
		started atomic.Int32
		release = make(chan struct{})
	)
	job := &Job{
		Name:     "slow",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) {
			started.Add(1)
			<-release
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(newNoopLogger(), job)

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	// несколько тиков проходят, пока первый запуск удерживает замок
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), started.Load())

	close(release)
	cancel()
	<-done
}

// TestRunner_IndependentJobs проверяет, что задачи не блокируют друг друга
func TestRunner_IndependentJobs(t *testing.T) {
	var (
		fastRuns atomic.Int32
		release  = make(chan struct{})
	)
	slow := &Job{
		Name:     "slow",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) {
			<-release
		},
	}
	fast := &Job{
		Name:     "fast",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) {
			fastRuns.Add(1)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(newNoopLogger(), slow, fast)

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	assert.GreaterOrEqual(t, fastRuns.Load(), int32(3))

	close(release)
	cancel()
	<-done
}

// TestRunner_RecoversFromPanic проверяет, что паника задачи не роняет цикл
func TestRunner_RecoversFromPanic(t *testing.T) {
	var runs atomic.Int32
	job := &Job{
		Name:     "panicky",
		Interval: 15 * time.Millisecond,
		Run: func(ctx context.Context) {
			runs.Add(1)
			panic("boom")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(newNoopLogger(), job)

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}
