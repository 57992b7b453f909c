package ecs

// EventQueue is a double-buffered event queue. Events emitted in tick N are
// drained in tick N+1; Swap is called once at tick start.
type EventQueue[Ev any] struct {
	front []Ev
	back  []Ev
}

func NewEventQueue[Ev any]() *EventQueue[Ev] {
	return &EventQueue[Ev]{
		front: make([]Ev, 0, 64),
		back:  make([]Ev, 0, 64),
	}
}

// Emit queues an event into the back buffer (readable after the next Swap).
func (q *EventQueue[Ev]) Emit(ev Ev) {
	q.back = append(q.back, ev)
}

// Swap rotates back to front and clears the new back buffer.
func (q *EventQueue[Ev]) Swap() {
	q.front, q.back = q.back, q.front[:0]
}

// Drain delivers every front-buffer event to fn in emit order. Events emitted
// by fn land in the back buffer.
func (q *EventQueue[Ev]) Drain(fn func(Ev)) {
	for _, ev := range q.front {
		fn(ev)
	}
	clear(q.front)
	q.front = q.front[:0]
}

// Len returns the number of events waiting in the front buffer.
func (q *EventQueue[Ev]) Len() int {
	return len(q.front)
}
