package linkcheck

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// CacheEntry is a stored verdict for one URL.
type CacheEntry struct {
	URL       string
	Broken    bool
	Status    int
	CheckedAt time.Time
}

// Cache persists URL verdicts in SQLite so repeated gate runs (local or CI)
// don't re-probe URLs that were healthy moments ago.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.Mutex
}

// OpenCache opens (creating if needed) the cache database at dbPath.
// Use ":memory:" for an ephemeral cache.
func OpenCache(dbPath string, ttl time.Duration) (*Cache, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	c := &Cache{db: db, ttl: ttl}
	if err := c.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return c, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS link_cache (
		url TEXT PRIMARY KEY,
		broken INTEGER NOT NULL,
		status INTEGER NOT NULL,
		checked_at INTEGER NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached verdict for url if one exists and is still within
// the TTL.
func (c *Cache) Get(ctx context.Context, url string) (*CacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRowContext(ctx,
		"SELECT url, broken, status, checked_at FROM link_cache WHERE url = ?", url)

	var entry CacheEntry
	var broken int
	var checkedAt int64
	if err := row.Scan(&entry.URL, &broken, &entry.Status, &checkedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query link cache: %w", err)
	}

	entry.Broken = broken != 0
	entry.CheckedAt = time.Unix(checkedAt, 0)
	if time.Since(entry.CheckedAt) > c.ttl {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores a verdict, replacing any previous one for the same URL.
func (c *Cache) Put(ctx context.Context, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	broken := 0
	if entry.Broken {
		broken = 1
	}
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO link_cache (url, broken, status, checked_at) VALUES (?, ?, ?, ?)",
		entry.URL, broken, entry.Status, entry.CheckedAt.Unix())
	if err != nil {
		return fmt.Errorf("store link cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
