package process

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/pkg/model"
)

// DefaultTTL is how long ancestry answers are reused.
const DefaultTTL = 10 * time.Second

// BuildFunc reconstructs the ancestry of a pid.
type BuildFunc func(pid int) (model.ProcessAncestry, bool)

type entry struct {
	ancestry model.ProcessAncestry
	name     string
	captured time.Time
}

// Cache memoizes ancestry by pid. An entry is only served while the live
// process name still matches the one seen when it was built, so a reused
// pid is never answered with a dead process's chain. The whole cache is
// dropped once it is older than its TTL.
type Cache struct {
	build   BuildFunc
	prewarm func()
	clock   clock.Clock
	ttl     time.Duration

	mu      sync.Mutex
	entries map[int]entry
	reset   time.Time
}

type Option func(*Cache)

func WithClock(c clock.Clock) Option {
	return func(cache *Cache) { cache.clock = c }
}

func WithTTL(ttl time.Duration) Option {
	return func(cache *Cache) { cache.ttl = ttl }
}

// WithPrewarm sets the hook GetBatch calls once before resolving any pid.
func WithPrewarm(f func()) Option {
	return func(cache *Cache) { cache.prewarm = f }
}

func NewCache(build BuildFunc, opts ...Option) *Cache {
	c := &Cache{
		build:   build,
		clock:   clock.New(),
		ttl:     DefaultTTL,
		entries: make(map[int]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset = c.clock.Now()
	return c
}

// NewPlatformCache wires a cache to a platform's builder and snapshot.
func NewPlatformCache(p proc.Platform, opts ...Option) *Cache {
	opts = append([]Option{WithPrewarm(p.Prewarm)}, opts...)
	return NewCache(NewBuilder(p).Build, opts...)
}

// Get returns the ancestry of pid, whose current name is name.
func (c *Cache) Get(pid int, name string) (model.ProcessAncestry, bool) {
	c.mu.Lock()
	now := c.clock.Now()
	if now.Sub(c.reset) > c.ttl {
		c.entries = make(map[int]entry)
		c.reset = now
	}
	if e, ok := c.entries[pid]; ok {
		if e.name == name {
			c.mu.Unlock()
			return e.ancestry, true
		}
		zap.S().Debugw("pid reused, evicting ancestry", "pid", pid, "was", e.name, "now", name)
		delete(c.entries, pid)
	}
	c.mu.Unlock()

	// built without the lock; a concurrent miss for the same pid may build
	// twice and the later insert wins
	a, ok := c.build(pid)
	if !ok {
		return model.ProcessAncestry{}, false
	}

	c.mu.Lock()
	c.entries[pid] = entry{ancestry: a, name: name, captured: c.clock.Now()}
	c.mu.Unlock()
	return a, true
}

// Target identifies a process for a batch lookup.
type Target struct {
	PID  int
	Name string
}

// GetBatch resolves many pids against one shared snapshot. Pids whose
// ancestry could not be built are absent from the result.
func (c *Cache) GetBatch(targets []Target) map[int]model.ProcessAncestry {
	if c.prewarm != nil {
		c.prewarm()
	}
	out := make(map[int]model.ProcessAncestry, len(targets))
	for _, t := range targets {
		if a, ok := c.Get(t.PID, t.Name); ok {
			out[t.PID] = a
		}
	}
	zap.S().Debugw("ancestry batch", "targets", len(targets), "resolved", len(out), "cached", c.Len())
	return out
}

// Len reports how many entries are held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
