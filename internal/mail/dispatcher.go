// AngelaMos | 2026
// dispatcher.go

package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/metrics"
)

const asyncSendTimeout = 30 * time.Second

type DispatcherConfig struct {
	Async     bool
	Workers   int
	QueueSize int
}

// Dispatcher delivers mail inline or through a bounded worker pool.
// Inline sends return the sender's error. Queued sends only fail when the
// queue is full or closed; delivery errors are logged and dropped.
type Dispatcher struct {
	sender  Sender
	cfg     DispatcherConfig
	logger  *slog.Logger
	metrics *metrics.Recorder

	queue     chan Message
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func NewDispatcher(
	sender Sender,
	cfg DispatcherConfig,
	logger *slog.Logger,
	recorder *metrics.Recorder,
) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 2
	}

	d := &Dispatcher{
		sender:  sender,
		cfg:     cfg,
		logger:  logger,
		metrics: recorder,
	}

	if cfg.Async {
		d.queue = make(chan Message, cfg.QueueSize)
		for i := range cfg.Workers {
			d.wg.Add(1)
			go d.work(i)
		}
		recorder.GaugeFunc(
			"mail_queue_depth",
			"Emails waiting for a delivery worker.",
			func() float64 { return float64(len(d.queue)) },
		)
	}

	return d
}

func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	if !d.cfg.Async {
		err := d.sender.Send(ctx, msg)
		d.record(msg, err)
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return fmt.Errorf("enqueue %s: dispatcher closed: %w",
			msg.Template, core.ErrSendFailed)
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		d.metrics.Mail(msg.Template, metrics.OutcomeRejected)
		return fmt.Errorf("enqueue %s: queue full: %w",
			msg.Template, core.ErrSendFailed)
	}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), asyncSendTimeout)
		err := d.sender.Send(ctx, msg)
		cancel()

		d.record(msg, err)
		if err != nil {
			d.logger.Error("queued email dropped",
				"worker", id,
				"template", msg.Template,
				"to", msg.To,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) record(msg Message, err error) {
	if err != nil {
		d.metrics.Mail(msg.Template, metrics.OutcomeError)
		return
	}
	d.metrics.Mail(msg.Template, metrics.OutcomeSuccess)
	d.logger.Debug("email sent", "template", msg.Template, "to", msg.To)
}

// Close stops accepting mail and waits for queued messages to drain.
func (d *Dispatcher) Close(ctx context.Context) error {
	if !d.cfg.Async {
		return nil
	}

	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain mail queue: %w", ctx.Err())
	}
}
