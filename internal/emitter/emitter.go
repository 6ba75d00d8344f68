// Package emitter delivers decision signals to the collector from a bounded
// in-memory queue. Enqueueing never blocks the request path: when the queue
// is full or the collector is down, signals are dropped and counted, and the
// decision response is unaffected.
package emitter

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/agentics-ai/kansa/internal/signal"
	"github.com/agentics-ai/kansa/internal/telemetry"
)

// DefaultQueueSize bounds the signal queue.
const DefaultQueueSize = 100

// sendTimeout bounds one delivery attempt to the collector.
const sendTimeout = 5 * time.Second

// item carries either one signal or one batch through the queue.
type item struct {
	sig   *signal.Signal
	batch *signal.Batch
}

// Emitter owns the queue and the single background delivery worker.
type Emitter struct {
	sink   Sink
	logger *slog.Logger

	queue   chan item
	dropped atomic.Int64
	failed  atomic.Int64

	done       chan struct{}
	cancelLoop context.CancelFunc
	drainCtx   context.Context // set by Drain so final deliveries respect the caller's deadline
}

// New creates an emitter. A non-positive queueSize selects DefaultQueueSize.
func New(sink Sink, logger *slog.Logger, queueSize int) *Emitter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Emitter{
		sink:   sink,
		logger: logger,
		queue:  make(chan item, queueSize),
		done:   make(chan struct{}),
	}
}

// Start begins the background delivery loop and registers OTEL metrics.
// Call Drain to stop.
func (e *Emitter) Start(ctx context.Context) {
	e.registerMetrics()
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancelLoop = cancel
	go e.deliverLoop(loopCtx)
}

// Enqueue queues one signal for delivery. Returns false when the queue is
// full and the signal was dropped.
func (e *Emitter) Enqueue(sig signal.Signal) bool {
	return e.offer(item{sig: &sig})
}

// EnqueueBatch queues one batch for delivery. Returns false when the queue
// is full and the batch was dropped.
func (e *Emitter) EnqueueBatch(batch signal.Batch) bool {
	return e.offer(item{batch: &batch})
}

func (e *Emitter) offer(it item) bool {
	select {
	case e.queue <- it:
		return true
	default:
		e.dropped.Add(1)
		e.logger.Warn("emitter: queue full, dropping signal",
			"queue_size", cap(e.queue),
			"dropped_total", e.dropped.Load())
		return false
	}
}

func (e *Emitter) deliverLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drainQueue()
			close(e.done)
			return
		case it := <-e.queue:
			e.deliver(ctx, it)
		}
	}
}

// drainQueue delivers whatever is still queued at shutdown, bounded by the
// drain context from Drain.
func (e *Emitter) drainQueue() {
	ctx := e.drainCtx
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
	}
	for {
		select {
		case it := <-e.queue:
			if ctx.Err() != nil {
				e.dropped.Add(1)
				continue
			}
			e.deliver(ctx, it)
		default:
			return
		}
	}
}

// deliver makes one attempt. Failures are logged and counted, never retried:
// the collector is advisory and must not be able to back the service up.
func (e *Emitter) deliver(ctx context.Context, it item) {
	sctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var err error
	switch {
	case it.sig != nil:
		err = e.sink.Emit(sctx, *it.sig)
	case it.batch != nil:
		err = e.sink.EmitBatch(sctx, *it.batch)
	}
	if err != nil {
		e.failed.Add(1)
		e.logger.Error("emitter: delivery failed, signal dropped", "error", err)
		return
	}
	if it.sig != nil {
		e.logger.Debug("emitter: signal delivered", "summary", it.sig.Summary())
	}
}

// Drain signals the delivery loop to stop, waits for it to finish delivering
// the queued signals, and returns. The ctx bounds both the wait and the
// final deliveries.
func (e *Emitter) Drain(ctx context.Context) {
	e.drainCtx = ctx
	if e.cancelLoop != nil {
		e.cancelLoop()
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		e.logger.Warn("emitter: drain timed out waiting for delivery loop")
	}
}

// Len returns the current queue depth.
func (e *Emitter) Len() int {
	return len(e.queue)
}

// Dropped returns the total signals dropped at enqueue or during a timed-out
// drain. A non-zero value indicates audit-trail loss.
func (e *Emitter) Dropped() int64 {
	return e.dropped.Load()
}

// Failed returns the total delivery attempts the collector rejected.
func (e *Emitter) Failed() int64 {
	return e.failed.Load()
}

// registerMetrics registers observable gauges for queue health. Called from
// Start after the global meter provider is initialized.
func (e *Emitter) registerMetrics() {
	meter := telemetry.Meter("kansa/emitter")

	_, _ = meter.Int64ObservableGauge("kansa.emitter.queue_depth",
		metric.WithDescription("Current number of signals waiting for delivery"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(e.Len()))
			return nil
		}),
	)

	_, _ = meter.Int64ObservableGauge("kansa.emitter.dropped_total",
		metric.WithDescription("Total signals dropped due to queue capacity or drain timeout"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(e.Dropped())
			return nil
		}),
	)

	_, _ = meter.Int64ObservableGauge("kansa.emitter.delivery_failures_total",
		metric.WithDescription("Total delivery attempts rejected by the collector"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(e.Failed())
			return nil
		}),
	)
}
