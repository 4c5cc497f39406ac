package host

import "sync"

// Handler receives editor events
type Handler func(ed Editor)

// Events dispatches editor events to registered handlers. Handlers run
// synchronously on the publishing goroutine, in registration order.
type Events struct {
	mu               sync.RWMutex
	selectionChanged []Handler
	didChange        []Handler
}

// NewEvents creates an empty dispatcher
func NewEvents() *Events {
	return &Events{}
}

// OnSelectionChanged registers a handler for cursor and selection moves
func (e *Events) OnSelectionChanged(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectionChanged = append(e.selectionChanged, h)
}

// OnDidChange registers a handler for text changes
func (e *Events) OnDidChange(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.didChange = append(e.didChange, h)
}

// PublishSelectionChanged notifies selection handlers
func (e *Events) PublishSelectionChanged(ed Editor) {
	e.publish(ed, func() []Handler { return e.selectionChanged })
}

// PublishDidChange notifies change handlers
func (e *Events) PublishDidChange(ed Editor) {
	e.publish(ed, func() []Handler { return e.didChange })
}

func (e *Events) publish(ed Editor, list func() []Handler) {
	if e == nil {
		return
	}
	e.mu.RLock()
	handlers := append([]Handler(nil), list()...)
	e.mu.RUnlock()

	for _, h := range handlers {
		h(ed)
	}
}
