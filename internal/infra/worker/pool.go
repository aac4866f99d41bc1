// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var (
	ErrNilTask   = errors.New("nil task")
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

type Task func(ctx context.Context) error

// Pool runs tasks on a fixed set of workers. Each worker owns its queue, so tasks
// submitted with the same key run one after another in submission order.
type Pool struct {
	wg     sync.WaitGroup
	queues []chan Task
	quit   chan struct{}
	once   sync.Once
	next   atomic.Uint64
	log    *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	l := logger.With().Str("component", "worker.Pool").Logger()
	p := &Pool{queues: make([]chan Task, workers), quit: make(chan struct{}), log: &l}
	for i := range p.queues {
		p.queues[i] = make(chan Task, 16)
	}
	return p
}

func (p *Pool) Start(ctx context.Context) {
	for i, q := range p.queues {
		p.wg.Add(1)
		go func(id int, q <-chan Task) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-q:
					p.run(ctx, id, task)
				}
			}
		}(i, q)
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Warn().Err(err).Int("worker", id).Msg("task error")
	}
}

// Stop signals the workers to exit and waits for running tasks to return.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Submit queues task on the next worker without blocking; it drops the task when saturated.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	q := p.queues[p.next.Add(1)%uint64(len(p.queues))]
	select {
	case <-p.quit:
		return ErrStopped
	default:
	}
	select {
	case q <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitKeyed queues task on the worker owning key, waiting for room until ctx is done.
func (p *Pool) SubmitKeyed(ctx context.Context, key int64, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	idx := key % int64(len(p.queues))
	if idx < 0 {
		idx = -idx
	}
	select {
	case p.queues[idx] <- task:
		return nil
	case <-p.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
