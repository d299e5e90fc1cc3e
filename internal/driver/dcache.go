package driver

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// DiskCache keeps check summaries on disk keyed by Digest.
// Safe for concurrent use within one process; writes are atomic renames so
// concurrent processes never observe a partial entry.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens the cache under dir, or under the user cache
// directory when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.Wrap(err, "locate cache directory")
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "cstar")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache directory %s", dir)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "checks", key.String()+".mp")
}

// Put serializes and writes a summary.
func (c *DiskCache) Put(key Digest, s *Summary) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(err, "create cache bucket")
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return errors.Wrap(err, "create cache entry")
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(s); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "encode cache entry %s", key)
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "close cache entry")
	}
	if err = os.Rename(tmp, p); err != nil {
		return errors.Wrap(err, "commit cache entry")
	}
	return nil
}

// Get reads a summary. Entries written by another schema version count as
// misses.
func (c *DiskCache) Get(key Digest) (*Summary, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "open cache entry")
	}
	defer f.Close()

	var s Summary
	if err := msgpack.NewDecoder(f).Decode(&s); err != nil {
		return nil, false, errors.Wrapf(err, "decode cache entry %s", key)
	}
	if s.Schema != summarySchemaVersion {
		return nil, false, nil
	}
	return &s, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrap(err, "drop cache")
	}
	if err := os.RemoveAll(old); err != nil {
		return errors.Wrap(err, "drop cache")
	}
	return os.MkdirAll(c.dir, 0o755)
}
