package providers

import "mediabot/internal/structures"

// MetricsCacheProvider wraps a CacheProviderInterface and counts context
// lookups that found (hit) or missed (fresh or expired user) an entry.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) error {
	return c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Del(key string) {
	c.inner.Del(key)
}

func (c *MetricsCacheProvider) MaxEntrySize() int {
	return c.inner.MaxEntrySize()
}

// NewInstrumentedCacheProvider creates the conversation cache wrapped with
// hit/miss instrumentation.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	return &MetricsCacheProvider{
		inner:   NewCacheProvider(conf, logger),
		metrics: metrics,
	}
}
