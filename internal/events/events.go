// Package events implements the vault's lifecycle notifications.
//
// A Notifier is created at startup, observers are registered on it
// explicitly, and the vault service emits to it after every successful
// mutation. Delivery is synchronous and in registration order.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/starford/recvault/internal/models"
)

// Event names.
const (
	RecordAdded   = "recordAdded"
	RecordUpdated = "recordUpdated"
	RecordDeleted = "recordDeleted"
	BackupCreated = "backupCreated"
	VaultChanged  = "vaultChanged"
)

// Event is a single lifecycle notification.
type Event struct {
	Name   string         `json:"name"`
	Record *models.Record `json:"record,omitempty"`
	// Path is set for file-producing events (backups).
	Path string    `json:"path,omitempty"`
	Time time.Time `json:"time"`
}

// Observer receives events.
type Observer interface {
	Notify(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

// Notify calls f(ctx, e).
func (f ObserverFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }

type subscription struct {
	id  uint64
	obs Observer
}

// Notifier fans events out to registered observers.
type Notifier struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

// NewNotifier creates a notifier with the given observers registered.
func NewNotifier(observers ...Observer) *Notifier {
	n := &Notifier{}
	for _, o := range observers {
		n.Subscribe(o)
	}
	return n
}

// Subscribe registers o and returns a function that removes it.
func (n *Notifier) Subscribe(o Observer) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, obs: o})

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for i, s := range n.subs {
				if s.id == id {
					n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit delivers e to every observer. A zero Time is set to now.
// A nil Notifier discards events.
func (n *Notifier) Emit(ctx context.Context, e Event) {
	if n == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	n.mu.RLock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, s := range subs {
		s.obs.Notify(ctx, e)
	}
}

// Len returns the number of registered observers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
