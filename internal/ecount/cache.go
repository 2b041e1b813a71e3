package ecount

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileCache stores ERP responses as one JSON file per request key. Entries
// expire by file modification time. A zero TTL disables the cache.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type cacheEntry struct {
	Data     json.RawMessage `json:"data"`
	CachedAt string          `json:"cachedAt"`
}

func NewFileCache(dir string, ttl time.Duration, now func() time.Time) *FileCache {
	if now == nil {
		now = time.Now
	}
	return &FileCache{dir: dir, ttl: ttl, now: now}
}

// CacheKey identifies a request by its API path and JSON body.
func CacheKey(apiPath string, body any) string {
	if body == nil {
		body = map[string]any{}
	}
	bs, err := json.Marshal(body)
	if err != nil {
		bs = []byte("{}")
	}
	return apiPath + "::" + string(bs)
}

func (c *FileCache) file(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return filepath.Join(c.dir, strconv.FormatUint(uint64(h.Sum32()), 16)+".json")
}

// Get returns the cached payload for key, or false when missing, expired or
// unreadable.
func (c *FileCache) Get(key string) (json.RawMessage, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	f := c.file(key)
	st, err := os.Stat(f)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(st.ModTime()) > c.ttl {
		return nil, false
	}
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, false
	}
	var e cacheEntry
	if err := json.Unmarshal(raw, &e); err != nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return nil, false
	}
	return e.Data, true
}

// Put writes data under key.
func (c *FileCache) Put(key string, data json.RawMessage) error {
	if c == nil || c.ttl <= 0 {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	bs, err := json.MarshalIndent(cacheEntry{Data: data, CachedAt: c.now().UTC().Format(time.RFC3339)}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.file(key), bs, 0o644)
}
