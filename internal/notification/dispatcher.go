package notification

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher fires a notice across every configured channel. Dispatch is
// fire-and-forget: the caller's request never waits on it and never sees a
// delivery failure. Each channel is attempted independently and its outcome
// is appended to the notification log.
type Dispatcher struct {
	channels []Channel
	log      Repository
	logger   *zap.Logger

	// wg lets tests wait for detached dispatches to finish.
	wg sync.WaitGroup
}

func NewDispatcher(log Repository, logger *zap.Logger, channels ...Channel) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{channels: channels, log: log, logger: logger}
}

// Dispatch detaches immediately. No ordering guarantee exists between the
// caller's response and the channel attempts completing.
func (d *Dispatcher) Dispatch(n Notice) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(n)
	}()
}

// Wait blocks until every in-flight dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(n Notice) {
	for _, ch := range d.channels {
		entry := Entry{
			OrderID:   n.OrderID,
			Channel:   ch.Name(),
			Trigger:   n.Trigger,
			Status:    StatusSent,
			CreatedAt: time.Now().UTC(),
		}

		if err := d.send(ch, n); err != nil {
			entry.Status = StatusFailed
			entry.Error = err.Error()
			d.logger.Warn("notification channel failed",
				zap.String("channel", ch.Name()),
				zap.String("trigger", n.Trigger),
				zap.Int("orderId", n.OrderID),
				zap.Error(err),
			)
		}

		if err := d.log.Record(entry); err != nil {
			d.logger.Warn("notification log append failed",
				zap.String("channel", ch.Name()),
				zap.Int("orderId", n.OrderID),
				zap.Error(err),
			)
		}
	}
}

// send wraps the channel attempt so a panicking channel cannot take the
// dispatcher down.
func (d *Dispatcher) send(ch Channel, n Notice) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return ch.Send(n)
}

type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("channel panic: %v", p.value) }
