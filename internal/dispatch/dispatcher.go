package dispatch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/domain"
)

// Event identifies a store mutation the dispatcher reacts to.
type Event string

const (
	// EventBeforeWrite fires before a content-changing edit is committed.
	EventBeforeWrite Event = "message.before-write"
	// EventAfterCreate fires after a message row is newly created.
	EventAfterCreate Event = "message.after-create"
	// EventAfterDeleteIdentity fires when a user identity is removed.
	EventAfterDeleteIdentity Event = "identity.after-delete"
)

var eventsDispatched = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dispatcher_events_total",
		Help: "Total number of dispatched store events",
	},
	[]string{"event"},
)

// Context is passed to every hook. Tx is the transaction of the triggering
// write; hooks must perform all storage access through it so their effects
// commit and roll back with the write.
type Context struct {
	Tx *gorm.DB

	// Message is the row being written (new state for edits).
	Message *domain.Message
	// Prior is the pre-edit state, set only for EventBeforeWrite.
	Prior *domain.Message
	// Actor is the user performing the mutation, when known.
	Actor string
	// UserID is the removed identity for EventAfterDeleteIdentity.
	UserID string
}

// Hook reacts to a store event. Returning an error aborts the triggering
// write; the error surfaces to the caller wrapped in a HookError.
type Hook func(ctx *Context) error

type hookEntry struct {
	name string
	fn   Hook
}

// Dispatcher is an ordered, synchronous hook registry. Hooks are registered
// once at system initialization and run in registration order inside the
// transaction of the triggering write.
type Dispatcher struct {
	mu    sync.RWMutex
	hooks map[Event][]hookEntry
}

// New creates an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		hooks: make(map[Event][]hookEntry),
	}
}

// Register adds a named hook for an event. Hooks run in registration order.
func (d *Dispatcher) Register(event Event, name string, fn Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[event] = append(d.hooks[event], hookEntry{name: name, fn: fn})
}

// Dispatch runs all hooks for the event. The first failure stops the chain
// and is returned as a *common.HookError; hook failures are not retried.
func (d *Dispatcher) Dispatch(event Event, ctx *Context) error {
	d.mu.RLock()
	entries := make([]hookEntry, len(d.hooks[event]))
	copy(entries, d.hooks[event])
	d.mu.RUnlock()

	for _, entry := range entries {
		if err := entry.fn(ctx); err != nil {
			return &common.HookError{Event: string(event), Hook: entry.name, Err: err}
		}
	}

	eventsDispatched.WithLabelValues(string(event)).Inc()
	return nil
}
