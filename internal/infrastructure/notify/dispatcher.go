package notify

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawacademy/training-platform/internal/api/metrics"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	sendTimeout    = 30 * time.Second
)

type message struct {
	kind      ports.NotificationKind
	recipient string
	data      map[string]string
}

// Dispatcher decouples notification delivery from the request path: Send
// enqueues and returns immediately, and a fixed set of workers performs the
// SMTP round trips. Messages shard by recipient so mail to one address
// keeps its order.
type Dispatcher struct {
	workers []chan message
	sink    ports.Notifier
	log     zerolog.Logger
}

// NewDispatcher wraps sink with numWorkers sharded delivery workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan message, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Send enqueues a message for asynchronous delivery. A full worker queue
// drops the message rather than blocking the caller; the drop is logged and
// counted, and the caller's transaction is unaffected either way.
func (d *Dispatcher) Send(_ context.Context, kind ports.NotificationKind, recipient string, data map[string]string) error {
	idx := d.shardIndex(recipient)
	select {
	case d.workers[idx] <- message{kind: kind, recipient: recipient, data: data}:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.NotificationsSentTotal.WithLabelValues(string(kind), "error").Inc()
		d.log.Error().
			Str("kind", string(kind)).
			Str("recipient", recipient).
			Msg("notification queue full, message dropped")
		return nil
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan message) {
	gauge := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			gauge.Set(float64(len(ch)))

			// Delivery outlives the originating request, so the send runs
			// on its own deadline rather than the request context.
			sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			err := d.sink.Send(sendCtx, msg.kind, msg.recipient, msg.data)
			cancel()

			if err != nil {
				metrics.NotificationsSentTotal.WithLabelValues(string(msg.kind), "error").Inc()
				d.log.Error().Err(err).
					Str("kind", string(msg.kind)).
					Str("recipient", msg.recipient).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsSentTotal.WithLabelValues(string(msg.kind), "ok").Inc()
		}
	}
}
