package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
)

// Event is one named progress message with a JSON payload.
type Event struct {
	Name    string
	Payload interface{}
}

// Stream carries progress events from one running pipeline to one SSE
// consumer. The producing orchestrator pushes events with Emit and signals
// completion with End; the transport goroutine drains the channel in Serve.
// Once the consumer disconnects, further emissions are dropped so the
// producer never blocks on a gone client.
type Stream struct {
	events   chan Event
	gone     chan struct{}
	goneOnce sync.Once
	endOnce  sync.Once
}

func NewStream() *Stream {
	return &Stream{
		events: make(chan Event, 8),
		gone:   make(chan struct{}),
	}
}

// Emit queues one event. Safe to call from the producer goroutine at any
// time, including after the consumer left.
func (s *Stream) Emit(name string, payload interface{}) {
	select {
	case s.events <- Event{Name: name, Payload: payload}:
	case <-s.gone:
	}
}

// End marks the producer side as finished; Serve returns after draining.
func (s *Stream) End() {
	s.endOnce.Do(func() { close(s.events) })
}

// Serve writes the stream as server-sent events until the producer ends it
// or the client disconnects.
func (s *Stream) Serve(c *gin.Context) {
	defer s.goneOnce.Do(func() { close(s.gone) })

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	// Initial comment to keep the connection open.
	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-s.events:
			if !ok {
				return
			}
			data, err := json.Marshal(evt.Payload)
			if err != nil {
				continue
			}
			_, _ = c.Writer.Write([]byte("event: " + evt.Name + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
