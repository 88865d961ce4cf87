package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/TemirB/satrec-registry/internal/domain"
)

//go:generate mockgen -source cache.go -destination=cache_mock_test.go -package=cache

type repo interface {
	FindAll(ctx context.Context) ([]domain.Satellite, error)
}

// Cache holds satellites by id. Entries are only set after the store write
// succeeded, so a cached record always carries a satrec matching its TLE.
type Cache struct {
	size int
	lru  *lru.Cache[string, domain.Satellite]
}

func New(size int) (*Cache, error) {
	c, err := lru.New[string, domain.Satellite](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		size: size,
		lru:  c,
	}, nil
}

// Warm loads up to size records from the store. It returns how many were
// cached; a store error leaves the cache untouched.
func (c *Cache) Warm(ctx context.Context, repo repo) (int, error) {
	sats, err := repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(sats) > c.size {
		sats = sats[len(sats)-c.size:]
	}
	for i := range sats {
		c.Set(&sats[i])
	}
	return len(sats), nil
}

func (c *Cache) Get(id string) (*domain.Satellite, bool) {
	sat, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return &sat, true
}

func (c *Cache) Set(sat *domain.Satellite) {
	c.lru.Add(sat.ID, *sat)
}

func (c *Cache) Remove(id string) {
	c.lru.Remove(id)
}

func (c *Cache) Len() int { return c.lru.Len() }
