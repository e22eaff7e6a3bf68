// Package datcache manages the on-disk cache of DAT files keyed by a
// version counter.
//
// The cache is an explicit object with an injected root path and one
// invalidation rule: a stored version different from the current one
// wipes the whole directory. An empty root makes every operation a no-op.
package datcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"romcat/internal/logging"
)

const stateFile = "version.json"

type state struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cache is a versioned directory of DAT files.
type Cache struct {
	root   string
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a cache rooted at root. If root is empty, the cache is
// non-functional and all operations become no-ops.
func New(root string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{root: strings.TrimSpace(root), logger: logging.WithComponent(logger, "datcache")}
}

// Ensure prepares the cache directory for currentVersion. A version
// mismatch wipes every cached DAT so stale checksum data can never leak
// into an import. It reports whether the cache was invalidated.
func (c *Cache) Ensure(currentVersion int) (bool, error) {
	if c.root == "" {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.readState()
	if err != nil {
		return false, err
	}
	if stored != nil && stored.Version == currentVersion {
		return false, nil
	}

	if stored != nil {
		c.logger.Info("cache version changed, wiping cached dat files",
			logging.Int("stored", stored.Version),
			logging.Int("current", currentVersion))
		if err := os.RemoveAll(c.root); err != nil {
			return false, fmt.Errorf("wipe cache: %w", err)
		}
	}

	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return false, fmt.Errorf("create cache directory: %w", err)
	}
	if err := c.writeState(state{Version: currentVersion, UpdatedAt: time.Now().UTC()}); err != nil {
		return false, err
	}
	return stored != nil, nil
}

// Put stores DAT contents under name, atomically.
func (c *Cache) Put(name string, data []byte) error {
	if c.root == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.root, filepath.Base(name))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename cached dat: %w", err)
	}
	c.logger.Debug("cached dat file", logging.String("name", filepath.Base(name)))
	return nil
}

// Get returns the cached contents for name, with found reporting whether
// the entry exists.
func (c *Cache) Get(name string) ([]byte, bool, error) {
	if c.root == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(filepath.Join(c.root, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cached dat: %w", err)
	}
	return data, true, nil
}

// List returns the cached DAT file names, sorted.
func (c *Cache) List() ([]string, error) {
	if c.root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == stateFile || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Clear removes the whole cache directory including its version state.
func (c *Cache) Clear() error {
	if c.root == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(c.root); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (c *Cache) readState() (*state, error) {
	data, err := os.ReadFile(filepath.Join(c.root, stateFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache state: %w", err)
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt state file is treated as version-unknown, forcing a wipe.
		c.logger.Warn("corrupt cache state file", logging.Error(err))
		return &state{Version: -1}, nil
	}
	return &s, nil
}

func (c *Cache) writeState(s state) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache state: %w", err)
	}
	path := filepath.Join(c.root, stateFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename cache state: %w", err)
	}
	return nil
}
