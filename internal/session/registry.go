package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Opener loads a session for an estimate that is not cached yet.
type Opener func(ctx context.Context, estimateID string) (*Session, error)

// Registry keeps open sessions by estimate id. A session idle for longer
// than the TTL is evicted and closed; the next request reopens it from the
// store.
type Registry struct {
	mu    sync.Mutex
	cache *cache.Cache
	open  Opener
}

// NewRegistry returns a registry whose sessions expire after ttl of
// inactivity. A ttl <= 0 keeps sessions until dropped.
func NewRegistry(ttl time.Duration, open Opener) *Registry {
	expiration, cleanup := ttl, ttl/2
	if ttl <= 0 {
		expiration, cleanup = cache.NoExpiration, 0
	}
	c := cache.New(expiration, cleanup)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
		}
	})
	return &Registry{cache: c, open: open}
}

// Get returns the cached session for estimateID, opening it on a miss.
// Every hit extends the session's lifetime.
func (r *Registry) Get(ctx context.Context, estimateID string) (*Session, error) {
	if s, ok := r.lookup(estimateID); ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.lookup(estimateID); ok {
		return s, nil
	}
	if r.open == nil {
		return nil, fmt.Errorf("no session for estimate %s", estimateID)
	}
	s, err := r.open(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(estimateID, s)
	return s, nil
}

func (r *Registry) lookup(estimateID string) (*Session, bool) {
	v, ok := r.cache.Get(estimateID)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	r.cache.SetDefault(estimateID, s)
	return s, true
}

// Put caches s under estimateID, replacing any existing entry.
func (r *Registry) Put(estimateID string, s *Session) {
	r.cache.SetDefault(estimateID, s)
}

// Drop evicts and closes the session for estimateID.
func (r *Registry) Drop(estimateID string) {
	r.cache.Delete(estimateID)
}

// Len returns the number of cached sessions, including expired ones not
// yet cleaned up.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
