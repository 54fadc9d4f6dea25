// Package notifications fans a notification out to every configured sink:
// the notifications collection, connected websocket clients, email and the
// event exchange.
package notifications

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/models"
)

// Sink delivers a notification to one channel
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n models.Notification) error
}

// backgroundTimeout bounds one background fan-out
const backgroundTimeout = 30 * time.Second

// Dispatcher stamps notifications and hands them to its sinks. A failing sink
// is logged and skipped.
type Dispatcher struct {
	sinks      []Sink
	background []Sink
	now        func() time.Time
	wg         sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over sinks. These sinks have finished by
// the time Notify returns.
func NewDispatcher(now func() time.Time, sinks ...Sink) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{sinks: sinks, now: now}
}

// InBackground adds sinks that Notify hands to a goroutine, for channels
// that talk to remote services or slow clients
func (d *Dispatcher) InBackground(sinks ...Sink) *Dispatcher {
	d.background = append(d.background, sinks...)
	return d
}

// Notify implements services.Notifier
func (d *Dispatcher) Notify(ctx context.Context, userID string, n models.Notification) {
	if n.ID == "" {
		n.ID = primitive.NewObjectID().Hex()
	}
	n.UserID = userID
	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}

	for _, s := range d.sinks {
		deliver(ctx, s, n)
	}
	if len(d.background) == 0 {
		return
	}

	// the request may finish before the background sinks do
	bctx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(bctx, backgroundTimeout)
		defer cancel()
		for _, s := range d.background {
			deliver(ctx, s, n)
		}
	}()
}

// Wait blocks until every background delivery started so far has finished
// or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func deliver(ctx context.Context, s Sink, n models.Notification) {
	if err := s.Deliver(ctx, n); err != nil {
		zap.S().Errorw("failed to deliver notification",
			"sink", s.Name(),
			"user", n.UserID,
			"type", n.Type,
			"error", err)
	}
}

// StoreSink persists notifications so clients can list them later
type StoreSink struct {
	DB interface {
		InsertOne(ctx context.Context, n models.Notification) error
	}
}

// Name of the sink
func (s StoreSink) Name() string { return "store" }

// Deliver inserts the notification
func (s StoreSink) Deliver(ctx context.Context, n models.Notification) error {
	return s.DB.InsertOne(ctx, n)
}
