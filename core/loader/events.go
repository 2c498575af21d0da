package loader

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a loader mutation.
type EventKind string

const (
	ModuleRegistered      EventKind = "module_registered"
	ModuleUnregistered    EventKind = "module_unregistered"
	NamespaceRegistered   EventKind = "namespace_registered"
	NamespaceUnregistered EventKind = "namespace_unregistered"
	FactoryRegistered     EventKind = "factory_registered"
	FactoryUnregistered   EventKind = "factory_unregistered"
	CacheInvalidated      EventKind = "cache_invalidated"
)

// Event is published after every successful mutation.
type Event struct {
	ID      uuid.UUID
	Loader  string
	Kind    EventKind
	Subject string
	Time    time.Time
}

// Publisher receives loader events. eventbus.TypedBus[Event] implements it.
type Publisher interface {
	Publish(Event)
}

func (l *Loader) publish(kind EventKind, subject string) {
	if l.events == nil {
		return
	}
	l.events.Publish(Event{
		ID:      uuid.New(),
		Loader:  l.id,
		Kind:    kind,
		Subject: subject,
		Time:    time.Now(),
	})
}
