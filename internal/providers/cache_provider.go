package providers

import (
	"unsafe"

	"github.com/coocood/freecache"

	"mediabot/internal/structures"
)

// CacheProviderInterface backs the in-memory conversation contexts. Entries
// expire after the configured idle TTL and vanish on restart.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Del(key string)
	// MaxEntrySize is the largest len(key)+len(value) Set accepts.
	MaxEntrySize() int
}

// freecache stores a 24 byte header with every entry.
const entryHeaderSize = 24

type CacheProvider struct {
	cache    *freecache.Cache
	ttl      int
	maxEntry int
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	sizeBytes := max(conf.Conversation.CacheSize, 1) * 1024 * 1024
	ttl := max(int(conf.Conversation.TTL.Seconds()), 1)

	logger.Infof(TypeApp, "Conversation cache initialized: %dMB, TTL=%ds", conf.Conversation.CacheSize, ttl)

	return &CacheProvider{
		cache:    freecache.NewCache(sizeBytes),
		ttl:      ttl,
		// a segment is 1/256 of the cache and an entry may fill 1/4 of it
		maxEntry: sizeBytes/1024 - entryHeaderSize,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is never written to.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set refreshes the TTL on every write, so an active wizard never expires mid-step.
func (c *CacheProvider) Set(key string, value []byte) error {
	return c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del(unsafeStringToBytes(key))
}

func (c *CacheProvider) MaxEntrySize() int {
	return c.maxEntry
}
