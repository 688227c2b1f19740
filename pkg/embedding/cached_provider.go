package embedding

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider wraps another provider with a TTL cache keyed on the text
// content. Overlapping windows and repeated queries hit the embedding service
// once instead of once per occurrence.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

func NewCachedProvider(inner EmbeddingProvider) EmbeddingProvider {
	// Default expiration of 1 hour, purge expired entries every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &CachedProvider{
		inner: inner,
		cache: c,
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	key := fmt.Sprintf("%x", md5.Sum([]byte(text)))

	if x, found := p.cache.Get(key); found {
		return x.([]float32), nil
	}

	vec, err := p.inner.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, vec, cache.DefaultExpiration)
	return vec, nil
}
