package dom

// EventInit carries the flags of an event fired by a DOM algorithm.
type EventInit struct {
	Bubbles    bool
	Cancelable bool
}

// EventDispatcher delivers events raised by DOM algorithms to script.
// The js package implements it; a document without a dispatcher fires no
// events.
type EventDispatcher interface {
	// DispatchEvent fires synchronously and reports whether the default
	// action should run (the event was not canceled).
	DispatchEvent(target *Node, eventType string, init EventInit) bool

	// QueueEvent fires the event from a task after the current script.
	QueueEvent(target *Node, eventType string, init EventInit)
}
