package watcher

import (
	"sort"
	"sync"
	"time"
)

// BatchDebouncer collects events until a quiet period has passed and emits
// them as one batch. Repeated events for a path collapse into the latest.
type BatchDebouncer struct {
	delay  time.Duration
	emit   func([]Event)
	mu     sync.Mutex
	timer  *time.Timer
	events map[string]Event
}

// NewBatchDebouncer creates a debouncer that calls emit from its own
// goroutine once delay passes without a new event.
func NewBatchDebouncer(delay time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:  delay,
		emit:   emit,
		events: make(map[string]Event),
	}
}

// Add records an event and restarts the quiet period.
func (b *BatchDebouncer) Add(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[e.Path] = e
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

func (b *BatchDebouncer) take() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.events) == 0 {
		return nil
	}
	out := make([]Event, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e)
	}
	b.events = make(map[string]Event)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (b *BatchDebouncer) flush() {
	if events := b.take(); events != nil && b.emit != nil {
		b.emit(events)
	}
}

// Flush emits pending events immediately.
func (b *BatchDebouncer) Flush() { b.flush() }

// Cancel drops pending events.
func (b *BatchDebouncer) Cancel() { b.take() }

// Pending returns the number of distinct paths waiting to be emitted.
func (b *BatchDebouncer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
