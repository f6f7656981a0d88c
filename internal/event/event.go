package event

// Handler receives the positional arguments passed to Emit.
type Handler func(args ...interface{})

type subscription struct {
	id      uint64
	handler Handler
}

// Event is an explicit ordered list of handlers invoked synchronously,
// in subscription order, on the dispatch thread. There is no broadcast
// threading.
//
// Subscribing or unsubscribing while an emission is in progress is
// deferred until the emission completes, so a handler never observes a
// half-applied handler list.
type Event struct {
	handlers      []subscription
	toSubscribe   []subscription
	toUnsubscribe []uint64
	nextID        uint64
	emitting      bool
}

// New creates an empty event.
func New() *Event {
	return &Event{nextID: 1}
}

// Subscribe registers handler and returns a token for Unsubscribe.
func (e *Event) Subscribe(handler Handler) uint64 {
	id := e.nextID
	e.nextID++

	sub := subscription{id: id, handler: handler}
	if e.emitting {
		e.toSubscribe = append(e.toSubscribe, sub)
	} else {
		e.handlers = append(e.handlers, sub)
	}
	return id
}

// Unsubscribe removes the handler registered under id. Unknown ids are
// ignored.
func (e *Event) Unsubscribe(id uint64) {
	if e.emitting {
		e.toUnsubscribe = append(e.toUnsubscribe, id)
		return
	}
	e.remove(id)
}

// Emit delivers args to every handler in subscription order.
func (e *Event) Emit(args ...interface{}) {
	e.emitting = true
	for _, sub := range e.handlers {
		sub.handler(args...)
	}
	e.emitting = false
	e.applyChanges()
}

func (e *Event) applyChanges() {
	for _, sub := range e.toSubscribe {
		e.handlers = append(e.handlers, sub)
	}
	for _, id := range e.toUnsubscribe {
		e.remove(id)
	}
	e.toSubscribe = nil
	e.toUnsubscribe = nil
}

func (e *Event) remove(id uint64) {
	for i, sub := range e.handlers {
		if sub.id == id {
			e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
			return
		}
	}
}
