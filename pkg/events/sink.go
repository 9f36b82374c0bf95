package events

import "sync"

// Sink receives events in emission order. Implementations must not block
// the emitter; push-style sinks drop on overflow instead.
type Sink interface {
	Emit(Event)
}

// NopSink discards everything. OrNop substitutes it for nil sinks so the
// orchestrator can emit unconditionally.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// OrNop returns the sink, or a NopSink when it is nil.
func OrNop(sink Sink) Sink {
	if sink == nil {
		return NopSink{}
	}
	return sink
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Collector accumulates events into a slice. Used by tests and the CLI's
// --events output.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *Collector) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a snapshot of everything collected so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Errors returns only the collected error events.
func (c *Collector) Errors() []ErrorEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []ErrorEvent
	for _, e := range c.events {
		if ee, ok := e.(ErrorEvent); ok {
			errs = append(errs, ee)
		}
	}
	return errs
}

// ChannelSink forwards events onto a buffered channel with a non-blocking
// send; a full buffer drops the event. Feeds WebSocket writers.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a sink with the given buffer size (default 64).
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(e Event) {
	select {
	case s.ch <- e:
	default:
		// Drop for slow consumer.
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Close closes the channel. Emit must not be called after Close.
func (s *ChannelSink) Close() {
	close(s.ch)
}

// Tee fans each event out to every sink, in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}
