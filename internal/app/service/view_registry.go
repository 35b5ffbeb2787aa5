package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ViewFactory creates a view for an account on a chain.
type ViewFactory func(ctx context.Context, account string, chainID uint64) (*ValuationView, error)

// ViewRegistry keeps one open view per account and chain. Views idle for
// longer than the TTL are evicted and closed. Views are never closed while
// the registry lock is held.
type ViewRegistry struct {
	mu      sync.Mutex
	views   *cache.Cache
	idleTTL time.Duration
	factory ViewFactory
}

// NewViewRegistry creates a registry. A zero idleTTL keeps views until released.
func NewViewRegistry(idleTTL, cleanupInterval time.Duration, factory ViewFactory) *ViewRegistry {
	expiration := idleTTL
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	views := cache.New(expiration, cleanupInterval)
	views.OnEvicted(func(_ string, x interface{}) {
		if view, ok := x.(*ValuationView); ok {
			go view.Close()
		}
	})
	return &ViewRegistry{views: views, idleTTL: expiration, factory: factory}
}

func viewKey(account string, chainID uint64) string {
	return fmt.Sprintf("%d:%s", chainID, strings.ToLower(account))
}

// Acquire returns the open view for account and chain, opening it if needed.
// Every call resets the idle timer.
func (r *ViewRegistry) Acquire(ctx context.Context, account string, chainID uint64) (*ValuationView, error) {
	key := viewKey(account, chainID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.views.Get(key); found {
		view := x.(*ValuationView)
		r.views.Set(key, view, r.idleTTL)
		return view, nil
	}

	// Expired views still held by the cache would be overwritten without
	// their eviction callback.
	r.views.DeleteExpired()

	view, err := r.factory(ctx, account, chainID)
	if err != nil {
		return nil, err
	}
	view.Open()
	r.views.Set(key, view, r.idleTTL)
	return view, nil
}

// Lookup returns the open view without creating one.
func (r *ViewRegistry) Lookup(account string, chainID uint64) (*ValuationView, bool) {
	x, found := r.views.Get(viewKey(account, chainID))
	if !found {
		return nil, false
	}
	return x.(*ValuationView), true
}

// Release closes the view for account and chain, if any. It returns once the
// view is torn down.
func (r *ViewRegistry) Release(account string, chainID uint64) bool {
	key := viewKey(account, chainID)

	r.mu.Lock()
	x, found := r.views.Get(key)
	r.views.Delete(key)
	r.mu.Unlock()

	if !found {
		return false
	}
	x.(*ValuationView).Close()
	return true
}

// Len returns the number of open views.
func (r *ViewRegistry) Len() int {
	return r.views.ItemCount()
}

// CloseAll closes every open view and waits for their teardown.
func (r *ViewRegistry) CloseAll() {
	r.mu.Lock()
	r.views.DeleteExpired()
	items := r.views.Items()
	for key := range items {
		r.views.Delete(key)
	}
	r.mu.Unlock()

	for _, item := range items {
		item.Object.(*ValuationView).Close()
	}
}
