package hook

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

const queueSize = 16

// Dispatcher runs hooks for navigation events on a background goroutine.
// Publish never blocks; events arriving while the queue is full are dropped.
type Dispatcher struct {
	manager  *Manager
	executor *Executor

	queue chan Event
	wg    sync.WaitGroup
	once  sync.Once
}

// NewDispatcher creates a Dispatcher. Call Run to start it.
func NewDispatcher(m *Manager, e *Executor) *Dispatcher {
	return &Dispatcher{
		manager:  m,
		executor: e,
		queue:    make(chan Event, queueSize),
	}
}

// Publish queues ev for delivery. It reports false when the event was dropped.
func (d *Dispatcher) Publish(ev Event) bool {
	select {
	case d.queue <- ev:
		return true
	default:
		log.Warn().Str("command", ev.Command).Msg("hook queue full, dropping event")
		return false
	}
}

// Run delivers queued events until ctx is cancelled. Hooks for one event
// run in sequence; events are delivered in order.
func (d *Dispatcher) Run(ctx context.Context) {
	d.once.Do(func() {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-d.queue:
					d.deliver(ctx, ev)
				}
			}
		}()
	})
}

// Wait blocks until Run's goroutine has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	for _, h := range d.manager.For(ev.Command) {
		ev.Config = h.Manifest.Config
		resp, err := d.executor.Execute(ctx, h, &ev)
		if err != nil {
			log.Warn().Err(err).Str("hook", h.Manifest.Name).Msg("hook failed")
			continue
		}
		if !resp.Success {
			log.Warn().Str("hook", h.Manifest.Name).Str("error", resp.Error).Msg("hook reported failure")
			continue
		}
		log.Debug().Str("hook", h.Manifest.Name).Str("command", ev.Command).Msg("hook ran")
	}
}
