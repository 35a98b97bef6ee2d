package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// FetchFunc produces the full product list from the upstream provider.
type FetchFunc func(ctx context.Context) ([]Product, error)

// Cache owns the cached product list, its fetch timestamp, and the refresh
// policy. A read within the TTL window returns the cached list unchanged; a
// read after expiry re-fetches the whole list (no incremental refresh).
//
// The mutex only guards the cached value, not the upstream call: two
// requests racing past an expired window may both re-fetch, and whichever
// response lands last overwrites the other. That is acceptable for a pure
// cache of identical upstream data.
type Cache struct {
	fetch FetchFunc
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	products  []Product
	fetchedAt time.Time
}

// NewCache builds a catalog cache around fetch with the given TTL.
func NewCache(fetch FetchFunc, ttl time.Duration) *Cache {
	return &Cache{
		fetch: fetch,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Products returns the cached product list, re-fetching when the window has
// elapsed. A fetch failure surfaces the error together with an empty list;
// it never poisons a previously cached value inside a live window.
func (c *Cache) Products(ctx context.Context) ([]Product, error) {
	c.mu.Lock()
	if c.products != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		out := c.products
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	fresh, err := c.fetch(ctx)
	if err != nil {
		return []Product{}, err
	}

	c.mu.Lock()
	c.products = fresh
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return fresh, nil
}

// Categories derives the category list from the cached products: the set
// union of all category names, sorted lexicographically, with the synthetic
// "all" entries (one per supported language) prepended when not already
// present.
func (c *Cache) Categories(ctx context.Context, allNames []string) ([]string, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return []string{}, err
	}

	set := make(map[string]struct{})
	for _, p := range products {
		for _, name := range p.Categories {
			set[name] = struct{}{}
		}
	}
	cats := make([]string, 0, len(set))
	for name := range set {
		cats = append(cats, name)
	}
	sort.Strings(cats)

	// Prepend in reverse so the first configured name ends up first.
	for i := len(allNames) - 1; i >= 0; i-- {
		name := allNames[i]
		if _, ok := set[name]; !ok {
			cats = append([]string{name}, cats...)
		}
	}
	return cats, nil
}
