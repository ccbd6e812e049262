package device

import (
	"sync"

	"github.com/muurk/bravia/internal/protocol"
)

type closeObserver struct {
	id uint64
	fn func(CloseEvent)
}

type notifyObserver struct {
	id uint64
	fn func(protocol.Notification)
}

// observers holds subscriber lists. Emission copies the list so callbacks
// may unsubscribe themselves.
type observers struct {
	mu     sync.Mutex
	nextID uint64
	close  []closeObserver
	notify []notifyObserver
}

func (o *observers) addClose(fn func(CloseEvent)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.close = append(o.close, closeObserver{id: id, fn: fn})
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, c := range o.close {
			if c.id == id {
				o.close = append(o.close[:i:i], o.close[i+1:]...)
				return
			}
		}
	}
}

func (o *observers) addNotify(fn func(protocol.Notification)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.notify = append(o.notify, notifyObserver{id: id, fn: fn})
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, n := range o.notify {
			if n.id == id {
				o.notify = append(o.notify[:i:i], o.notify[i+1:]...)
				return
			}
		}
	}
}

func (o *observers) emitClose(ev CloseEvent) {
	o.mu.Lock()
	list := o.close
	o.mu.Unlock()
	for _, c := range list {
		c.fn(ev)
	}
}

func (o *observers) emitNotify(n protocol.Notification) {
	o.mu.Lock()
	list := o.notify
	o.mu.Unlock()
	for _, c := range list {
		c.fn(n)
	}
}
