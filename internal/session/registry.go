package session

import (
	"context"
	"log"
	"sync"
	"time"

	"siipcoffee/internal/cart"
	"siipcoffee/internal/chat"
	"siipcoffee/internal/intent"
)

// DefaultIdleTimeout is how long a session may sit unused before the
// janitor evicts it.
const DefaultIdleTimeout = 30 * time.Minute

type entry struct {
	session  *chat.Session
	lastUsed time.Time
	stop     func()
}

// Registry owns every live chat session, keyed by session id. Sessions are
// created on first use and evicted after sitting idle; eviction closes the
// session so in-flight replies are discarded.
type Registry struct {
	provider    intent.Provider
	idleTimeout time.Duration
	onCreate    func(*chat.Session) func()
	onCount     func(int)

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates a registry that backs new sessions with provider.
func NewRegistry(provider intent.Provider) *Registry {
	return &Registry{
		provider:    provider,
		idleTimeout: DefaultIdleTimeout,
		entries:     make(map[string]*entry),
	}
}

// OnCreate registers a hook run for each new session, typically to open a
// push channel to the backend. The returned stop function runs when the
// session is removed or evicted; nil is allowed.
func (r *Registry) OnCreate(hook func(*chat.Session) func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = hook
}

// OnCountChange registers a hook called with the live session count after
// every create, removal or eviction, typically to drive a gauge.
func (r *Registry) OnCountChange(hook func(int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCount = hook
}

// SetIdleTimeout overrides the eviction timeout. Zero disables eviction.
func (r *Registry) SetIdleTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idleTimeout = d
}

// GetOrCreate returns the session for id, creating it with a fresh cart if
// it does not exist. Every call refreshes the idle clock.
func (r *Registry) GetOrCreate(id, userID string) *chat.Session {
	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		e.lastUsed = time.Now()
		r.mu.Unlock()
		return e.session
	}
	sess := chat.NewSession(id, userID, r.provider, cart.NewStore())
	e := &entry{session: sess, lastUsed: time.Now()}
	if r.onCreate != nil {
		e.stop = r.onCreate(sess)
	}
	r.entries[id] = e
	count, onCount := len(r.entries), r.onCount
	r.mu.Unlock()

	if onCount != nil {
		onCount(count)
	}
	return sess
}

// Get returns the session for id if it exists.
func (r *Registry) Get(id string) (*chat.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = time.Now()
	return e.session, true
}

// Remove closes and drops the session for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	count, onCount := len(r.entries), r.onCount
	r.mu.Unlock()

	if ok {
		closeEntry(e)
		if onCount != nil {
			onCount(count)
		}
	}
}

func closeEntry(e *entry) {
	if e.stop != nil {
		e.stop()
	}
	e.session.Close()
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// EvictIdle closes and drops sessions idle for longer than the timeout,
// returning how many were evicted.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	var evicted []*entry
	if r.idleTimeout > 0 {
		cutoff := time.Now().Add(-r.idleTimeout)
		for id, e := range r.entries {
			if e.lastUsed.Before(cutoff) {
				evicted = append(evicted, e)
				delete(r.entries, id)
			}
		}
	}
	count, onCount := len(r.entries), r.onCount
	r.mu.Unlock()

	for _, e := range evicted {
		closeEntry(e)
	}
	if len(evicted) > 0 && onCount != nil {
		onCount(count)
	}
	return len(evicted)
}

// Run sweeps idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				log.Printf("Evicted %d idle sessions", n)
			}
		}
	}
}
