// Package brewcache persists the last successful "available PHP versions"
// registry answer on disk.
//
// Homebrew searches are slow (network plus formula evaluation), so listing
// reuses an answer for up to an hour. Unlike a classic evict-on-expiry
// cache, expired snapshots are kept: when the registry is unreachable the
// stale answer is still the best one available, and callers surface its age
// instead of failing.
//
// The snapshot is a single TOML file under the user cache directory
// (~/.cache/phpswitch on Linux, ~/Library/Caches/phpswitch on macOS), so
// users can inspect or delete it by hand.
package brewcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
)

// TTL is how long a snapshot counts as fresh.
const TTL = time.Hour

// fileName is the snapshot file, placed under the phpswitch cache dir.
const fileName = "available_versions.cache"

// Lock acquisition bounds for concurrent phpswitch invocations.
const (
	lockTimeout = time.Second
	lockRetry   = 100 * time.Millisecond
)

// State classifies a loaded snapshot.
type State int

const (
	// Miss means no usable snapshot exists.
	Miss State = iota
	// Stale means a snapshot exists but its TTL has lapsed.
	Stale
	// Fresh means the snapshot is within its TTL.
	Fresh
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "miss"
	}
}

// Entry is one known PHP version in a snapshot.
type Entry struct {
	ID        string `toml:"id"`
	Installed bool   `toml:"installed"`
}

// Snapshot is the persisted registry answer.
type Snapshot struct {
	FetchedAt time.Time `toml:"fetched_at"`
	Versions  []Entry   `toml:"versions"`
}

// Age returns how long ago the snapshot was fetched.
func (s Snapshot) Age() time.Duration {
	return time.Since(s.FetchedAt)
}

// Store reads and writes the snapshot file.
type Store struct {
	path string
}

// NewStore creates a Store at an explicit file path. Used by tests and by
// the default constructor.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewDefaultStore creates a Store at the per-user cache location.
func NewDefaultStore() (*Store, error) {
	path, err := xdg.CacheFile(filepath.Join("phpswitch", fileName))
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}
	return NewStore(path), nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot and classifies it. A missing, unreadable, or
// corrupt file is a Miss; corrupt files are removed so the next save starts
// clean. Load never returns an error: a broken cache must never break a
// listing.
func (s *Store) Load() (Snapshot, State) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, Miss
	}

	var snap Snapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		// Invalid snapshot - treat as miss
		_ = os.Remove(s.path)
		return Snapshot{}, Miss
	}
	if snap.FetchedAt.IsZero() {
		_ = os.Remove(s.path)
		return Snapshot{}, Miss
	}

	if time.Since(snap.FetchedAt) < TTL {
		return snap, Fresh
	}
	return snap, Stale
}

// Save writes the snapshot atomically, serialized against concurrent
// phpswitch processes by a sibling lock file. Failing to acquire the lock
// within a second returns an error; the caller decides whether a skipped
// cache write matters.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	fileLock := flock.New(s.path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	if !locked {
		return fmt.Errorf("cache file %s is locked by another process", s.path)
	}
	defer fileLock.Unlock()

	data, err := toml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot file. Removing an absent file is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
