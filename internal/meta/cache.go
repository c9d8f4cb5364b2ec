package meta

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

type cachedSockets struct {
	modTime time.Time
	size    int64
	specs   []SocketSpec
}

// Cache keeps parsed socket files keyed by path. An entry is reused only
// while the file's modification time and size are unchanged.
type Cache struct {
	cache *gocache.Cache
}

// NewCache creates a socket cache with the given expiration settings.
func NewCache(defaultExpiration, cleanupInterval time.Duration) *Cache {
	return &Cache{cache: gocache.New(defaultExpiration, cleanupInterval)}
}

// Sockets returns the parsed sockets at path, reading the file only when it
// changed since the last call.
func (c *Cache) Sockets(ctx context.Context, path string) ([]SocketSpec, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.cache.Delete(path)
			return nil, nil
		}
		return nil, err
	}

	if v, found := c.cache.Get(path); found {
		if entry, ok := v.(cachedSockets); ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			logger.Debug("Socket cache hit.", "path", path)
			return entry.specs, nil
		}
	}

	specs, err := ReadSockets(path)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(path, cachedSockets{modTime: info.ModTime(), size: info.Size(), specs: specs})
	logger.Debug("Socket cache refreshed.", "path", path, "sockets", len(specs))
	return specs, nil
}

// Flush drops every cached entry.
func (c *Cache) Flush() {
	c.cache.Flush()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
