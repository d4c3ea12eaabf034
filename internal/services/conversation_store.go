package services

import (
	"encoding/binary"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"mediabot/internal/models"
	"mediabot/internal/providers"
)

type ConversationStoreInterface interface {
	Get(userID int64) *models.ConversationContext
	Save(userID int64, c *models.ConversationContext) error
	Drop(userID int64)
}

// ConversationStore keeps each user's conversation context in the in-memory
// cache. Entries expire after the configured idle TTL and vanish on restart;
// a missing entry reads as a fresh Idle context.
//
// A context larger than the cache's entry limit is split into parts. The
// head entry starts with the part count as a uvarint.
type ConversationStore struct {
	cache  providers.CacheProviderInterface
	logger providers.Logger
}

func NewConversationStore(cache providers.CacheProviderInterface, logger providers.Logger) *ConversationStore {
	return &ConversationStore{cache: cache, logger: logger}
}

// maxParts bounds the part count read from a head entry.
const maxParts = 4096

func conversationKey(userID int64) string {
	return "conv:" + strconv.FormatInt(userID, 10)
}

func partKey(userID int64, n int) string {
	return conversationKey(userID) + "/" + strconv.Itoa(n)
}

func (cs *ConversationStore) Get(userID int64) *models.ConversationContext {
	raw, ok := cs.load(userID)
	if !ok {
		return models.NewConversationContext()
	}
	c := models.NewConversationContext()
	if err := json.Unmarshal(raw, c); err != nil {
		cs.logger.Warnf(providers.TypeBot, "Dropping unreadable context of user %d: %s", userID, err)
		cs.Drop(userID)
		return models.NewConversationContext()
	}
	if c.State == "" {
		c.State = models.StateIdle
	}
	return c
}

func (cs *ConversationStore) load(userID int64) ([]byte, bool) {
	head, ok := cs.cache.Get(conversationKey(userID))
	if !ok {
		return nil, false
	}
	parts, n := binary.Uvarint(head)
	if n <= 0 || parts == 0 || parts > maxParts {
		cs.logger.Warnf(providers.TypeBot, "Dropping context of user %d with a bad header", userID)
		cs.cache.Del(conversationKey(userID))
		return nil, false
	}
	raw := append([]byte(nil), head[n:]...)
	for i := 1; i < int(parts); i++ {
		part, ok := cs.cache.Get(partKey(userID, i))
		if !ok {
			cs.logger.Warnf(providers.TypeBot, "Context of user %d lost part %d of %d", userID, i, parts)
			cs.Drop(userID)
			return nil, false
		}
		raw = append(raw, part...)
	}
	return raw, true
}

// Save writes the context. An error means the context is gone: the previous
// entry is dropped so that a half-written context is never read back.
func (cs *ConversationStore) Save(userID int64, c *models.ConversationContext) error {
	raw, err := json.Marshal(c)
	if err != nil {
		cs.Drop(userID)
		return fmt.Errorf("encode context of user %d: %w", userID, err)
	}

	// room for the longest part key and the uvarint header
	size := cs.cache.MaxEntrySize() - len(partKey(userID, 1<<20)) - binary.MaxVarintLen64
	if size <= 0 {
		cs.Drop(userID)
		return fmt.Errorf("store context of user %d: cache entries are too small", userID)
	}
	chunks := split(raw, size)
	if len(chunks) > maxParts {
		cs.Drop(userID)
		return fmt.Errorf("store context of user %d: %d bytes exceed the cache", userID, len(raw))
	}

	for i := len(chunks) - 1; i >= 1; i-- {
		if err := cs.cache.Set(partKey(userID, i), chunks[i]); err != nil {
			cs.Drop(userID)
			return fmt.Errorf("store context of user %d (%d bytes): %w", userID, len(raw), err)
		}
	}
	head := binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen64+len(chunks[0])), uint64(len(chunks)))
	head = append(head, chunks[0]...)
	if err := cs.cache.Set(conversationKey(userID), head); err != nil {
		cs.Drop(userID)
		return fmt.Errorf("store context of user %d (%d bytes): %w", userID, len(raw), err)
	}
	return nil
}

// split cuts raw into pieces of at most size bytes. It always returns at
// least one piece.
func split(raw []byte, size int) [][]byte {
	chunks := make([][]byte, 0, len(raw)/size+1)
	for len(raw) > size {
		chunks = append(chunks, raw[:size])
		raw = raw[size:]
	}
	return append(chunks, raw)
}

func (cs *ConversationStore) Drop(userID int64) {
	if head, ok := cs.cache.Get(conversationKey(userID)); ok {
		if parts, n := binary.Uvarint(head); n > 0 {
			for i := 1; i < int(min(parts, maxParts)); i++ {
				cs.cache.Del(partKey(userID, i))
			}
		}
	}
	cs.cache.Del(conversationKey(userID))
}
