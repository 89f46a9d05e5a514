// Package scheduler запускает периодические задачи по фиксированным
// интервалам. Задача выполняется в отдельной горутине, поэтому цикл
// таймера остается отзывчивым; одновременный повторный запуск той же
// задачи исключен замком на задачу — медленный тик плюс новый тик
// не дают двух параллельных проверок.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job периодическая единица работы
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)

	mu sync.Mutex
}

// Runner планировщик задач
type Runner struct {
	jobs []*Job
	log  *slog.Logger
}

// NewRunner создает новый Runner
func NewRunner(log *slog.Logger, jobs ...*Job) *Runner {
	return &Runner{jobs: jobs, log: log}
}

// Start запускает все задачи и блокируется до отмены контекста.
// Каждая задача выполняется сразу при старте, затем по своему интервалу.
func (r *Runner) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range r.jobs {
		wg.Add(1)
		go func(job *Job) {
			defer wg.Done()
			r.runJob(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (r *Runner) runJob(ctx context.Context, job *Job) {
	r.launch(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.launch(ctx, job)
		}
	}
}

// launch диспетчеризует один запуск задачи, не блокируя цикл таймера
func (r *Runner) launch(ctx context.Context, job *Job) {
	if !job.mu.TryLock() {
		r.log.Warn("previous run still in progress, skipping tick", slog.String("job", job.Name))
		return
	}
	go func() {
		defer job.mu.Unlock()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("job panicked", slog.String("job", job.Name), slog.Any("panic", rec))
			}
		}()
		job.Run(ctx)
	}()
}
