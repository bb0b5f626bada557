package session

import (
	"log/slog"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// DefaultNotificationTTL is how long a notification stays shown
const DefaultNotificationTTL = 3 * time.Second

const notificationKey = "notification"

// Kind classifies a notification for display
type Kind string

const (
	KindInfo  Kind = "info"
	KindError Kind = "error"
)

// Notification is a transient message for the operator
type Notification struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier holds at most one notification at a time. A new notification
// replaces the previous one and restarts the expiry window. Every
// notification gets a larger ID than the one before it, and Dismiss only
// clears the notification it was given the ID of.
type Notifier struct {
	mu     sync.Mutex
	store  *cache.Cache
	ttl    time.Duration
	lastID uint64

	timeSource TimeSource
}

// NewNotifier creates a Notifier whose notifications expire after ttl
func NewNotifier(ttl time.Duration) *Notifier {
	return NewNotifierWithDeps(ttl, &defaultTimeSource{})
}

// NewNotifierWithDeps creates a Notifier that stamps expiry times from timeSrc
func NewNotifierWithDeps(ttl time.Duration, timeSrc TimeSource) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}

	store := cache.New(ttl, ttl)
	store.OnEvicted(func(_ string, v interface{}) {
		if note, ok := v.(Notification); ok {
			slog.Debug("Notification cleared", "id", note.ID)
		}
	})

	return &Notifier{
		store:      store,
		ttl:        ttl,
		timeSource: timeSrc,
	}
}

// TTL returns the expiry window of new notifications
func (n *Notifier) TTL() time.Duration {
	return n.ttl
}

// Show replaces the current notification
func (n *Notifier) Show(message string, kind Kind) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.lastID++
	note := Notification{
		ID:        n.lastID,
		Message:   message,
		Kind:      kind,
		ExpiresAt: n.timeSource.Now().Add(n.ttl),
	}
	n.store.Set(notificationKey, note, cache.DefaultExpiration)
	return note
}

// Current returns the shown notification, if any has not yet expired
func (n *Notifier) Current() (Notification, bool) {
	v, found := n.store.Get(notificationKey)
	if !found {
		return Notification{}, false
	}
	note, ok := v.(Notification)
	return note, ok
}

// Dismiss clears the current notification if its ID is id.
// It reports whether anything was cleared.
func (n *Notifier) Dismiss(id uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	note, ok := n.Current()
	if !ok || note.ID != id {
		return false
	}
	n.store.Delete(notificationKey)
	return true
}
