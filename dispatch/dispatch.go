// Package dispatch demonstrates the thread-topology assumption the arena
// subsystem is built around (spec §5): a dispatcher goroutine that only
// ever allocates contexts, handing messages off to a pool of worker
// goroutines that only ever free them. It exercises internal/arena's
// piggybacking mechanism end to end (spec boundary scenario S5) and the
// malformed-input abort path (S6); the request/response scheduler and
// socket transport that would surround this in a full datastore are out
// of this subsystem's scope, per spec §1.
package dispatch

import (
	"context"
	"fmt"

	"github.com/kingsalone/sysrepo/internal/arena"
	"github.com/kingsalone/sysrepo/record"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Message is a unit of work handed from the dispatcher to a worker: a
// managed object plus a sequence number for tracing. The receiving
// worker does not own Object's context until it calls Adopt (see
// Worker.Run); until then the context's owner field is nil, matching
// spec §5's "ownership transfers happen at well-defined handoff points."
type Message struct {
	Object record.Object
	Seq    uint64
}

// Fill populates a freshly constructed object's fields, returning an
// error if the input driving construction (e.g. a deserialized message)
// turns out to be malformed partway through.
type Fill func(record.Object) error

// Handle processes one message's object. A returned error does not abort
// the object's context; Worker.Run always destroys it afterward either
// way, since a handler failure is a processing-level concern distinct
// from the malformed-construction case Fill models.
type Handle func(record.Object) error

// Dispatcher is the producer side: it owns one *arena.Owner and never
// calls Destroy, only New and Handoff, matching the "one side only
// allocates" half of spec §4.4's piggybacking problem statement.
type Dispatcher struct {
	owner  *arena.Owner
	out    chan Message
	logger *zap.Logger
	seq    uint64
}

// NewDispatcher creates a Dispatcher sending onto a channel of the given
// buffer size. A nil logger disables logging.
func NewDispatcher(bufSize int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		owner:  arena.NewOwner(),
		out:    make(chan Message, bufSize),
		logger: logger,
	}
}

// Out returns the channel workers should receive from.
func (d *Dispatcher) Out() <-chan Message { return d.out }

// Produce constructs one object (hintSize is passed to record.New, which
// does not use it for sizing), runs fill to populate
// it, and sends it to workers with this dispatcher's rolling peak-usage
// average piggybacked onto its context. If fill fails, the partially
// populated context is aborted in a single step (spec S6) instead of
// being sent on.
func (d *Dispatcher) Produce(ctx context.Context, hintSize uint32, fill Fill) error {
	obj, err := record.New(ctx, d.owner, hintSize)
	if err != nil {
		return fmt.Errorf("dispatch: acquire failed: %w", err)
	}
	if err := fill(obj); err != nil {
		record.Abort(d.owner, obj)
		if d.logger != nil {
			d.logger.Warn("dispatch: aborted malformed message", zap.Error(err))
		}
		return fmt.Errorf("dispatch: fill failed: %w", err)
	}

	if c := obj.Context(); c != nil {
		obj = record.Bind(d.owner.Handoff(c))
	}

	d.seq++
	msg := Message{Object: obj, Seq: d.seq}
	messagesDispatched.Inc()

	select {
	case d.out <- msg:
		return nil
	case <-ctx.Done():
		// the message was never handed off to a worker; release its
		// context back to this dispatcher's own pool rather than leak it
		if c := msg.Object.Context(); c != nil {
			c.Dec()
			_ = d.owner.Release(c)
		}
		return ctx.Err()
	}
}

// Close signals no more messages will be produced.
func (d *Dispatcher) Close() { close(d.out) }

// Worker is the consumer side: it owns its own *arena.Owner, receives
// contexts built by (possibly many) dispatchers, and only ever calls
// Destroy, matching the "other side only frees" half of spec §4.4.
type Worker struct {
	owner  *arena.Owner
	logger *zap.Logger
}

// NewWorker creates a Worker with its own context pool. A nil logger
// disables logging.
func NewWorker(logger *zap.Logger) *Worker {
	return &Worker{owner: arena.NewOwner(), logger: logger}
}

// Run adopts and processes messages from in until it is closed or ctx is
// canceled, calling handle on each and destroying its object's context
// afterward regardless of whether handle returned an error.
func (w *Worker) Run(ctx context.Context, in <-chan Message, handle Handle) error {
	for {
		select {
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			w.process(msg, handle)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Worker) process(msg Message, handle Handle) {
	obj := msg.Object
	if c := obj.Context(); c != nil {
		obj = record.Bind(w.owner.Adopt(c))
	}

	if err := handle(obj); err != nil && w.logger != nil {
		w.logger.Warn("dispatch: handler error", zap.Uint64("seq", msg.Seq), zap.Error(err))
	}

	if err := obj.Destroy(w.owner); err != nil && w.logger != nil {
		w.logger.Warn("dispatch: destroy failed", zap.Uint64("seq", msg.Seq), zap.Error(err))
	}
	messagesHandled.Inc()
}

// RunPool starts n workers, each with its own Owner and context pool,
// all reading from the same channel, and waits for all of them to exit.
// A handle error on one worker is logged but does not stop the others;
// only ctx cancellation or the channel closing ends the pool, since per
// spec §5 processing is wait-free and synchronous and there is no
// built-in cancellation/timeout model for the arena operations
// themselves.
func RunPool(ctx context.Context, n int, in <-chan Message, logger *zap.Logger, handle Handle) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		w := NewWorker(logger)
		g.Go(func() error {
			return w.Run(gctx, in, handle)
		})
	}
	return g.Wait()
}
