package trace

import (
	"slices"
	"sync"

	"github.com/hupe1980/stepmesh/core"
)

// Options configures an InMemoryRecorder.
type Options struct {
	// Capacity bounds the number of retained events. When full, the oldest
	// events are dropped. Zero keeps everything.
	Capacity int

	// Kinds restricts recording to the listed kinds. Empty records all.
	Kinds []core.EventKind
}

// InMemoryRecorder is a process-local core.EventSink. It offers:
//  1. Append-only event history in emission order
//  2. Filtered views by kind and tick
//  3. The execution order of stepper names, per tick or overall
//
// Concurrency: protected by RWMutex, so views can be read from another
// goroutine while the scheduler ticks. Suitable for tests, examples and
// debugging; swap for a streaming sink to persist long runs.
type InMemoryRecorder struct {
	mu       sync.RWMutex
	events   []core.Event
	head     int // index of the oldest event once the ring is full
	capacity int
	kinds    map[core.EventKind]struct{}
	dropped  int
}

var _ core.EventSink = (*InMemoryRecorder)(nil)

// NewInMemoryRecorder creates an empty recorder.
func NewInMemoryRecorder(optFns ...func(o *Options)) *InMemoryRecorder {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &InMemoryRecorder{capacity: max(opts.Capacity, 0)}
	if len(opts.Kinds) > 0 {
		r.kinds = make(map[core.EventKind]struct{}, len(opts.Kinds))
		for _, k := range opts.Kinds {
			r.kinds[k] = struct{}{}
		}
	}

	return r
}

// Record appends ev, evicting the oldest event when the capacity is reached.
func (r *InMemoryRecorder) Record(ev core.Event) {
	if r.kinds != nil {
		if _, ok := r.kinds[ev.Kind]; !ok {
			return
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity > 0 && len(r.events) == r.capacity {
		r.events[r.head] = ev
		r.head = (r.head + 1) % r.capacity
		r.dropped++
		return
	}
	r.events = append(r.events, ev)
}

// Events returns a copy of the retained events in emission order.
func (r *InMemoryRecorder) Events() []core.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Concat(r.events[r.head:], r.events[:r.head])
}

// ByKind returns the retained events of kind.
func (r *InMemoryRecorder) ByKind(kind core.EventKind) []core.Event {
	return r.filter(func(ev core.Event) bool { return ev.Kind == kind })
}

// ByTick returns the retained events emitted during tick.
func (r *InMemoryRecorder) ByTick(tick uint64) []core.Event {
	return r.filter(func(ev core.Event) bool { return ev.Tick == tick })
}

// Executions returns the names of executed steppers in execution order.
func (r *InMemoryRecorder) Executions() []string {
	var out []string
	for _, ev := range r.ByKind(core.EventExecuted) {
		out = append(out, ev.StepperName)
	}
	return out
}

// ExecutionsAt returns the names of steppers executed during tick.
func (r *InMemoryRecorder) ExecutionsAt(tick uint64) []string {
	var out []string
	for _, ev := range r.filter(func(ev core.Event) bool {
		return ev.Kind == core.EventExecuted && ev.Tick == tick
	}) {
		out = append(out, ev.StepperName)
	}
	return out
}

// Len returns the number of retained events.
func (r *InMemoryRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Dropped returns how many events were evicted because of the capacity.
func (r *InMemoryRecorder) Dropped() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// Reset forgets every event.
func (r *InMemoryRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.head = 0
	r.dropped = 0
}

func (r *InMemoryRecorder) filter(keep func(core.Event) bool) []core.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Event
	for _, part := range [][]core.Event{r.events[r.head:], r.events[:r.head]} {
		for _, ev := range part {
			if keep(ev) {
				out = append(out, ev)
			}
		}
	}
	return out
}
