package instrument

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// Sink receives flushed batches of events.
type Sink interface {
	Write(batch []Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(batch []Event) error

func (f SinkFunc) Write(batch []Event) error { return f(batch) }

// JSONLinesSink writes one JSON document per event.
type JSONLinesSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	return &JSONLinesSink{w: w}
}

func (s *JSONLinesSink) Write(batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	for _, e := range batch {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode event %s: %w", e.SpanID, err)
		}
	}
	return nil
}

// EventBuffer collects events in memory and periodically flushes them
// to the sink in a batch.
type EventBuffer struct {
	mu      sync.Mutex
	events  []Event
	sink    Sink
	maxSize int
	ticker  *time.Ticker
	done    chan struct{}
	stop    sync.Once
}

// NewEventBuffer creates a buffer that flushes on a timer or when full.
func NewEventBuffer(sink Sink, maxSize int, flushIntervalMs int) *EventBuffer {
	if maxSize <= 0 {
		maxSize = 1
	}
	if flushIntervalMs <= 0 {
		flushIntervalMs = 100
	}
	eb := &EventBuffer{
		sink:    sink,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	eb.ticker = time.NewTicker(time.Duration(flushIntervalMs) * time.Millisecond)
	go eb.run()
	return eb
}

func (eb *EventBuffer) run() {
	for {
		select {
		case <-eb.done:
			return
		case <-eb.ticker.C:
			eb.Flush()
		}
	}
}

// Enqueue adds an event to the buffer. If the buffer is full, a flush
// is triggered asynchronously.
func (eb *EventBuffer) Enqueue(event Event) {
	eb.mu.Lock()
	eb.events = append(eb.events, event)
	shouldFlush := len(eb.events) >= eb.maxSize
	eb.mu.Unlock()
	if shouldFlush {
		go eb.Flush()
	}
}

// Flush hands all buffered events to the sink in a single batch.
func (eb *EventBuffer) Flush() {
	eb.mu.Lock()
	if len(eb.events) == 0 {
		eb.mu.Unlock()
		return
	}
	batch := eb.events
	eb.events = nil
	eb.mu.Unlock()

	if err := eb.sink.Write(batch); err != nil {
		log.Printf("ERROR: event buffer flush (%d events): %v", len(batch), err)
	}
}

// Stop halts the background ticker and flushes remaining events.
func (eb *EventBuffer) Stop() {
	eb.stop.Do(func() {
		eb.ticker.Stop()
		close(eb.done)
	})
	eb.Flush()
}
