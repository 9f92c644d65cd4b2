package events

// EventSink is a destination for orchestration events. Implementations can
// publish to the watermill bus, collect events in tests, or drop them.
type EventSink interface {
	PublishEvent(event Event) error
}
