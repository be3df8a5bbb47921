package engine

// Event is one item in a phase's response stream.
type Event interface {
	isEvent()
}

// TextEvent is a block of assistant text.
type TextEvent struct {
	Text string
}

// ToolUseEvent records one tool invocation the engine attempted. Denied is
// set when the guard chain refused it; the denial reason was already reported
// back to the engine through the permission protocol.
type ToolUseEvent struct {
	Tool       string
	Input      map[string]any
	Denied     bool
	DenyReason string
}

// ResultEvent is the terminal segment of a response stream. Exactly one is
// delivered per submitted instruction.
type ResultEvent struct {
	Summary string
	IsError bool
}

func (TextEvent) isEvent()    {}
func (ToolUseEvent) isEvent() {}
func (ResultEvent) isEvent()  {}

// Stream delivers the engine's response to one instruction. Events arrive in
// protocol order and the channel closes after the terminal result (or a
// fatal error). Err must be checked once the channel is closed.
type Stream struct {
	events chan Event
	err    error
	done   chan struct{}
}

func newStream() *Stream {
	return &Stream{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
}

// NewStaticStream returns an already-completed stream that delivers the
// given events in order. Intended for fake engines in tests.
func NewStaticStream(events ...Event) *Stream {
	s := &Stream{
		events: make(chan Event, len(events)),
		done:   make(chan struct{}),
	}
	for _, ev := range events {
		s.events <- ev
	}
	s.close(nil)
	return s
}

// NewFailedStream returns a stream that terminates immediately with err
// after delivering the given events. Intended for fake engines in tests.
func NewFailedStream(err error, events ...Event) *Stream {
	s := &Stream{
		events: make(chan Event, len(events)),
		done:   make(chan struct{}),
	}
	for _, ev := range events {
		s.events <- ev
	}
	s.close(err)
	return s
}

// Events returns the ordered event channel.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Err reports the fatal error that terminated the stream, if any. Valid only
// after Events is closed.
func (s *Stream) Err() error {
	return s.err
}

// emit delivers an event unless the stream is already closed.
func (s *Stream) emit(ev Event) {
	select {
	case <-s.done:
	case s.events <- ev:
	}
}

// close finishes the stream, recording err as its terminal error.
func (s *Stream) close(err error) {
	select {
	case <-s.done:
		return
	default:
	}
	s.err = err
	close(s.done)
	close(s.events)
}
