package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kingsalone/sysrepo/internal/arena"
	"github.com/kingsalone/sysrepo/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherProduceAndWorkerHandle(t *testing.T) {
	d := NewDispatcher(4, nil)
	var handled int64

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for i := 0; i < 5; i++ {
			err := d.Produce(ctx, 256, func(o record.Object) error {
				_, ferr := o.AllocField(64)
				return ferr
			})
			require.NoError(t, err)
		}
		d.Close()
	}()

	w := NewWorker(nil)
	err := w.Run(ctx, d.Out(), func(o record.Object) error {
		atomic.AddInt64(&handled, 1)
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, atomic.LoadInt64(&handled))
}

func TestDispatcherAbortsOnFillError(t *testing.T) {
	d := NewDispatcher(1, nil)
	ctx := context.Background()

	wantErr := errors.New("malformed payload")
	err := d.Produce(ctx, 64, func(o record.Object) error {
		_, _ = o.AllocField(16)
		return wantErr
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)

	select {
	case <-d.Out():
		t.Fatal("a message should never be sent after its fill function failed")
	default:
	}
}

// TestPiggybackAcrossDispatcherAndWorker models S5: the dispatcher
// repeatedly constructs large messages while the worker only ever
// destroys them, yet the worker's own pool ends up sized for the
// dispatcher's workload via the piggybacked peak-usage hint.
func TestPiggybackAcrossDispatcherAndWorker(t *testing.T) {
	d := NewDispatcher(1, nil)
	w := NewWorker(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const msgSize = 64 * 1024
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < arena.PeakHistoryLength+2; i++ {
			err := d.Produce(ctx, msgSize, func(o record.Object) error {
				_, ferr := o.AllocField(msgSize)
				return ferr
			})
			require.NoError(t, err)
		}
		d.Close()
	}()

	processed := 0
	err := w.Run(ctx, d.Out(), func(o record.Object) error {
		processed++
		return nil
	})
	require.NoError(t, err)
	<-done

	assert.Equal(t, arena.PeakHistoryLength+2, processed)
	assert.GreaterOrEqual(t, w.owner.PeakAverage(), uint32(msgSize),
		"worker's rolling average should reflect the dispatcher's message sizes, not its own (zero) allocations")
}

func TestRunPoolStopsOnContextCancel(t *testing.T) {
	in := make(chan Message)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunPool(ctx, 2, in, nil, func(record.Object) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunPoolProcessesUntilChannelClosed(t *testing.T) {
	d := NewDispatcher(4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for i := 0; i < 10; i++ {
			require.NoError(t, d.Produce(ctx, 64, func(o record.Object) error {
				_, ferr := o.AllocField(8)
				return ferr
			}))
		}
		d.Close()
	}()

	var handled int64
	err := RunPool(ctx, 3, d.Out(), nil, func(record.Object) error {
		atomic.AddInt64(&handled, 1)
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, atomic.LoadInt64(&handled))
}

func TestDispatcherProduceRespectsContextCancellation(t *testing.T) {
	d := NewDispatcher(0, nil) // unbuffered: Produce blocks without a reader
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- d.Produce(ctx, 64, func(o record.Object) error { return nil })
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Produce did not observe context cancellation")
	}
}
