package service

// Event names published to connected websocket clients.
const (
	EventRequestCreated = "request.created"
	EventRequestUpdated = "request.updated"
	EventRequestDecided = "request.decided"
)

// EventBus delivers domain events to live subscribers (the websocket hub).
type EventBus interface {
	Publish(event string, payload interface{})
}

// publish is a nil-safe helper so services can run without a bus in tests.
func publish(bus EventBus, event string, payload interface{}) {
	if bus != nil {
		bus.Publish(event, payload)
	}
}
