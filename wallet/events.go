package wallet

import (
	"sync"
)

type Event string

const EventAccountChanged Event = "AccountChanged"

// Events fans zero payload signals out to listeners. Listeners re-query the
// wallet for whatever changed.
type Events struct {
	lk        sync.Mutex
	nextID    uint64
	listeners map[Event][]listener
}

type listener struct {
	id uint64
	fn func()
}

func NewEvents() *Events {
	return &Events{listeners: make(map[Event][]listener)}
}

// On adds fn for event and returns a func removing it again.
func (e *Events) On(event Event, fn func()) (off func()) {
	e.lk.Lock()
	defer e.lk.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[Event][]listener)
	}
	e.nextID++
	id := e.nextID
	e.listeners[event] = append(e.listeners[event], listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			e.lk.Lock()
			defer e.lk.Unlock()
			ls := e.listeners[event]
			for i, l := range ls {
				if l.id == id {
					e.listeners[event] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit calls every listener of event in subscription order, outside the lock.
func (e *Events) Emit(event Event) {
	e.lk.Lock()
	ls := make([]listener, len(e.listeners[event]))
	copy(ls, e.listeners[event])
	e.lk.Unlock()

	for _, l := range ls {
		l.fn()
	}
}

func (e *Events) Len(event Event) int {
	e.lk.Lock()
	defer e.lk.Unlock()
	return len(e.listeners[event])
}
