// Package worker drains the record queue into the season aggregator.
//
// Workers filter malformed records and fold the rest; a record that fails
// to fold is logged and counted, never fatal to the worker. Applied and
// duplicate counts are recorded by the aggregator itself so the sync and
// queued submission paths share one set of counters.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/pkg/logger"
	"github.com/seambreak/gully/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Record is what workers read off the queue.
type Record = model.PerformanceRecord

// Folder folds one performance into the season state.
type Folder interface {
	AddPerformance(ctx context.Context, rec Record) (*model.CanonicalPlayer, bool, error)
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker processes queued records until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, the worker is
	// shut down, or the dequeue channel closes.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for its loop to exit.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over an in-process queue.
type InMemoryWorker struct {
	queue  Queue
	folder Folder
	name   string

	// folds counts applied folds for the pool's throughput gauge.
	folds *atomic.Int64

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, folder Folder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		folder:   folder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			if err := w.processRecord(ctx, rec); err != nil {
				w.logger.Error(ctx, "record not folded",
					logger.String("match_id", rec.MatchID),
					logger.String("player", rec.Name),
					logger.String("club", rec.Club),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("worker %s shutdown: %w", w.name, ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// processRecord filters and folds a single record.
func (w *InMemoryWorker) processRecord(ctx context.Context, rec Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if strings.TrimSpace(rec.Name) == "" {
		metrics.RecordMalformedRecord()
		w.logger.Debug(ctx, "dropping record with blank name",
			logger.String("match_id", rec.MatchID),
			logger.String("club", rec.Club),
		)
		return nil
	}

	_, applied, err := w.folder.AddPerformance(ctx, rec)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "fold_error")
		return fmt.Errorf("folding record for %q in match %s: %w", rec.Name, rec.MatchID, err)
	}
	if applied && w.folds != nil {
		w.folds.Add(1)
	}
	return nil
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	folder  Folder

	stopOnce sync.Once
	shutdown chan struct{}

	// folds counts applied folds since the last throughput sample.
	folds atomic.Int64

	logger logger.Logger
}

// NewPool creates a worker pool. A count below one defaults to a multiple
// of the CPU count.
func NewPool(workerCount int, q Queue, folder Folder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		folder:   folder,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, folder, WithName("worker-"+strconv.Itoa(i)))
		w.folds = &p.folds
		p.workers[i] = w
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerFoldsPerSecond(0.0)

	return p
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers and the throughput sampler.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.sampleThroughput(ctx)
}

// sampleThroughput publishes folds-per-second at a fixed interval.
func (p *Pool) sampleThroughput(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			n := p.folds.Swap(0)
			metrics.UpdateWorkerFoldsPerSecond(float64(n) / metricsUpdateInterval.Seconds())
		}
	}
}

// Stop stops all workers without draining the queue.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.shutdown) })
	for _, w := range p.workers {
		w.stop()
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue, lets the workers drain the records already
// accepted, then stops them. Stragglers are cut off after a grace period.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.stop()
		}
	}
	p.stopOnce.Do(func() { close(p.shutdown) })
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
