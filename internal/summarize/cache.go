package summarize

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

const (
	summaryCacheMaxEntries = 512
	summaryCacheTTL        = 24 * time.Hour
)

// summaryCache is a small LRU with per-entry expiry so rerunning a topic
// does not re-summarize identical chunks.
type summaryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
}

type summaryCacheEntry struct {
	key       string
	summary   string
	expiresAt time.Time
}

func newSummaryCache(maxEntries int, ttl time.Duration) *summaryCache {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}

	return &summaryCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func summaryCacheKey(query string, chunk string) string {
	query = strings.TrimSpace(query)
	chunk = strings.TrimSpace(chunk)
	if query == "" || chunk == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(chunk))

	return query + "|" + hex.EncodeToString(hash[:])
}

func (c *summaryCache) get(key string, now time.Time) (string, bool) {
	if c == nil || key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}

	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return "", false
	}

	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return "", false
	}

	c.order.MoveToFront(elem)

	return entry.summary, true
}

func (c *summaryCache) set(key string, summary string, now time.Time) {
	if c == nil || key == "" || summary == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := now.Add(c.ttl)

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*summaryCacheEntry)
		if !castOk {
			return
		}

		entry.summary = summary
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&summaryCacheEntry{
		key:       key,
		summary:   summary,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	for len(c.entries) > c.maxEntries {
		last := c.order.Back()
		if last == nil {
			return
		}
		c.removeElement(last)
	}
}

func (c *summaryCache) removeElement(elem *list.Element) {
	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return
	}

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
