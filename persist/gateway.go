// Package persist stores snapshots in a durable key-value store without
// blocking the rest of the app. Each snapshot facet lives under its own
// key and is read and written independently; writes triggered by change
// notifications are debounced behind a quiescence window.
package persist

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"taskdeck/model"
)

const (
	keyTasks      = "todos"
	keyCategories = "categories"
	keySettings   = "settings"

	// DefaultDebounce is the quiescence window measured from the most
	// recent change before a deferred write executes.
	DefaultDebounce = 500 * time.Millisecond
)

// Gateway serializes snapshots to a KV store. Persistence failures are
// reported via the logger and boolean results; they never propagate as
// panics or errors to the caller, and the in-memory state stays
// authoritative regardless.
//
// Writes are suppressed until Load has run once, so startup can never
// clobber durable state with empty in-memory defaults.
type Gateway struct {
	kv       KV
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	ready   bool
	timer   *time.Timer
	pending *model.Snapshot
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithDebounce overrides the quiescence window.
func WithDebounce(d time.Duration) Option {
	return func(g *Gateway) { g.debounce = d }
}

// WithLogger sets the logger used to report persistence failures.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// NewGateway creates a gateway over kv.
func NewGateway(kv KV, opts ...Option) *Gateway {
	g := &Gateway{
		kv:       kv,
		debounce: DefaultDebounce,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load reads and decodes all three facets. Each facet fails independently:
// a missing or corrupt entry falls back to its empty value without
// affecting the others, so a broken categories key still loads tasks.
// The boolean reports whether every stored facet decoded cleanly. After
// Load the gateway accepts writes, whatever the outcome.
func (g *Gateway) Load() (model.Snapshot, bool) {
	snap := model.NewSnapshot()
	ok := true

	if data, found := g.read(keyTasks, &ok); found {
		var tasks []model.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			g.log.Warn("discarding undecodable facet", "key", keyTasks, "error", err)
			ok = false
		} else if tasks != nil {
			snap.Tasks = tasks
		}
	}

	if data, found := g.read(keyCategories, &ok); found {
		var categories []string
		if err := json.Unmarshal(data, &categories); err != nil {
			g.log.Warn("discarding undecodable facet", "key", keyCategories, "error", err)
			ok = false
		} else if categories != nil {
			snap.Categories = categories
		}
	}

	if data, found := g.read(keySettings, &ok); found {
		var settings model.Settings
		if err := json.Unmarshal(data, &settings); err != nil {
			g.log.Warn("discarding undecodable facet", "key", keySettings, "error", err)
			ok = false
		} else {
			snap.Settings = settings
		}
	}

	g.mu.Lock()
	g.ready = true
	g.mu.Unlock()

	return snap, ok
}

// Save writes all three facets immediately. It returns false when the
// gateway has not loaded yet or when any facet fails to serialize or
// persist.
func (g *Gateway) Save(snap model.Snapshot) bool {
	g.mu.Lock()
	ready := g.ready
	g.mu.Unlock()
	if !ready {
		return false
	}
	return g.write(snap)
}

// Schedule records snap as the next state to persist and restarts the
// quiescence timer, so a burst of N changes inside the window produces
// exactly one write carrying the latest snapshot. Suppressed until the
// first Load.
func (g *Gateway) Schedule(snap model.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.ready {
		return
	}
	g.pending = &snap
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.debounce, g.flush)
}

// Close cancels any pending timer and synchronously writes the snapshot
// still waiting, so teardown never drops the last burst of changes.
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	snap := g.pending
	g.pending = nil
	g.mu.Unlock()

	if snap != nil {
		g.write(*snap)
	}
}

func (g *Gateway) flush() {
	g.mu.Lock()
	snap := g.pending
	g.pending = nil
	g.timer = nil
	g.mu.Unlock()

	if snap != nil {
		g.write(*snap)
	}
}

func (g *Gateway) write(snap model.Snapshot) bool {
	ok := g.writeFacet(keyTasks, snap.Tasks)
	ok = g.writeFacet(keyCategories, snap.Categories) && ok
	ok = g.writeFacet(keySettings, snap.Settings) && ok
	return ok
}

func (g *Gateway) writeFacet(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		g.log.Error("serialize facet", "key", key, "error", err)
		return false
	}
	if err := g.kv.Set(key, data); err != nil {
		g.log.Error("write facet", "key", key, "error", err)
		return false
	}
	return true
}

// read fetches raw bytes for key. Absence is not a failure; any other
// read error clears *ok.
func (g *Gateway) read(key string, ok *bool) ([]byte, bool) {
	data, err := g.kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.log.Warn("read facet", "key", key, "error", err)
			*ok = false
		}
		return nil, false
	}
	return data, true
}
