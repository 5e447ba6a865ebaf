package app

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is the polling timer the camera toggle starts and stops.
type Timer interface {
	Start()
	Stop()
	Running() bool
}

// EventLoop runs posted events and timer ticks one at a time on a single
// goroutine. A tick that arrives while an event or a previous tick is still
// running is coalesced with later ones, never queued.
type EventLoop struct {
	clock    clockwork.Clock
	interval time.Duration
	onTick   func()

	events chan func()
	done   chan struct{}
	ticker clockwork.Ticker
}

func NewEventLoop(clock clockwork.Clock, interval time.Duration) *EventLoop {
	return &EventLoop{
		clock:    clock,
		interval: interval,
		events:   make(chan func(), 16),
		done:     make(chan struct{}),
	}
}

// OnTick registers the tick handler. Call before Run.
func (l *EventLoop) OnTick(fn func()) {
	l.onTick = fn
}

// Post queues fn to run on the loop goroutine. It waits while the queue is
// full and reports false, dropping fn, once Run has returned.
func (l *EventLoop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Start begins ticking. Must be called on the loop goroutine.
func (l *EventLoop) Start() {
	if l.ticker != nil {
		return
	}
	l.ticker = l.clock.NewTicker(l.interval)
}

// Stop ends ticking. Must be called on the loop goroutine.
func (l *EventLoop) Stop() {
	if l.ticker == nil {
		return
	}
	l.ticker.Stop()
	l.ticker = nil
}

func (l *EventLoop) Running() bool {
	return l.ticker != nil
}

// Run processes events until ctx is cancelled. It may be called only once.
func (l *EventLoop) Run(ctx context.Context) error {
	defer close(l.done)
	defer l.Stop()
	for {
		var ticks <-chan time.Time
		if l.ticker != nil {
			ticks = l.ticker.Chan()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		case <-ticks:
			if l.onTick != nil {
				l.onTick()
			}
		}
	}
}
