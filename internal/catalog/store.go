package catalog

import (
	"sync/atomic"
	"time"

	"storebot/internal/logger"
)

// Snapshot pairs a catalog with the index built from it. Snapshots are immutable;
// a reload installs a new one.
type Snapshot struct {
	Catalog  *Catalog
	Index    *Index
	LoadedAt time.Time
	Degraded bool   // serving the built-in fallback catalog
	Source   string // path the catalog was read from
}

// Store owns the current snapshot. Readers always see a complete catalog and
// index pair.
type Store struct {
	path    string
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// NewStore returns a store serving the fallback catalog until Load is called.
func NewStore(path string) *Store {
	s := &Store{path: path, now: time.Now}
	s.install(Fallback(), true)
	return s
}

// Snapshot returns the current snapshot; never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Load reads the catalog, falling back to the built-in cars on failure. It reports
// whether the store is degraded.
func (s *Store) Load() bool {
	c, degraded := LoadOrFallback(s.path)
	snap := s.install(c, degraded)

	stats := snap.Index.Stats()
	logger.LogInfo("Found %d brands", stats["brands"])
	logger.LogInfo("Categories: Luxury (%d), Sports (%d), American (%d), Japanese (%d)",
		stats[BucketLuxury], stats[BucketSports], stats[BucketAmerican], stats[BucketJapanese])
	return degraded
}

// Reload reads the catalog again and installs it only when the load succeeds, so a
// broken file never replaces a working catalog.
func (s *Store) Reload() error {
	c, err := LoadFile(s.path)
	if err != nil {
		logger.LogWarn("Catalog reload failed, keeping previous snapshot: %v", err)
		return err
	}
	s.install(c, false)
	logger.LogInfo("Catalog reloaded: %d cars from %s", c.Size(), s.path)
	return nil
}

func (s *Store) install(c *Catalog, degraded bool) *Snapshot {
	snap := &Snapshot{
		Catalog:  c,
		Index:    NewIndex(c),
		LoadedAt: s.now(),
		Degraded: degraded,
		Source:   s.path,
	}
	s.current.Store(snap)
	return snap
}

// CacheAge is the age of the current snapshot.
func (s *Store) CacheAge() time.Duration {
	return s.now().Sub(s.Snapshot().LoadedAt)
}

// Stats returns catalog statistics for the health endpoint and the CLI report.
func (s *Store) Stats() map[string]interface{} {
	snap := s.Snapshot()
	idx := snap.Index.Stats()

	return map[string]interface{}{
		"cars_count":   idx["cars"],
		"brands_count": idx["brands"],
		"items_count":  idx["items"],
		"degraded":     snap.Degraded,
		"source":       snap.Source,
		"last_loaded":  snap.LoadedAt,
		"cache_age":    s.CacheAge().Round(time.Second).String(),
	}
}
