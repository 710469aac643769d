// Package controller owns the item store of one menu configuration and applies
// editing gestures to it. Every gesture is atomic: it runs against a copy of the
// store and the copy is committed only if the gesture succeeds and the result
// still satisfies the structural invariants.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mchmarny/menubuilder/pkg/metric"
	"github.com/mchmarny/menubuilder/pkg/menu"
	"github.com/mchmarny/menubuilder/pkg/storage"
)

var (
	// ErrInvalidItem is returned for malformed gesture input.
	ErrInvalidItem = errors.New("invalid item")

	// ErrNoConfiguration is returned by Save before any configuration is named.
	ErrNoConfiguration = errors.New("no configuration loaded")
)

// Gesture names used in logs and metrics.
const (
	GestureAdd       = "add"
	GestureEdit      = "edit"
	GestureDivider   = "divider"
	GestureDrop      = "drop"
	GestureRename    = "rename"
	GestureDelete    = "delete"
	GestureOptionBox = "option_box"
	GestureMerge     = "merge"
)

// Controller is the single writer of a configuration's item store.
// It is safe for concurrent use; gestures are serialized.
type Controller struct {
	mu      sync.Mutex
	name    string
	store   *menu.Store
	dirty   bool
	repo    storage.Repository
	engine  *menu.Engine
	layout  menu.Layout
	metrics *metric.Editor
	log     *slog.Logger
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMetrics sets the counters. Defaults to a fresh metric.Editor.
func WithMetrics(m *metric.Editor) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLayout records the build layout for metrics.
func WithLayout(l menu.Layout) Option {
	return func(c *Controller) { c.layout = l }
}

// New returns a controller with an empty, unnamed configuration.
func New(repo storage.Repository, engine *menu.Engine, opts ...Option) *Controller {
	c := &Controller{
		store:  menu.NewStore(nil),
		repo:   repo,
		engine: engine,
		layout: menu.LayoutRooted,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = metric.NewEditor()
	}
	return c
}

// Metrics returns the controller's counters.
func (c *Controller) Metrics() *metric.Editor {
	return c.metrics
}

// Name returns the name of the loaded configuration.
func (c *Controller) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Dirty reports whether there are unsaved changes.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Entries returns the canonical list with IDs.
func (c *Controller) Entries() []menu.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Entries()
}

// Items returns the canonical list as persisted.
func (c *Controller) Items() []menu.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Items()
}

// Tree returns a freshly projected hierarchy of the current store.
func (c *Controller) Tree() *menu.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return menu.Project(c.store.Clone())
}

// Load replaces the store with the named configuration. A configuration that
// cannot be read yields an empty store; the error is returned for reporting.
func (c *Controller) Load(name string) error {
	items, err := c.repo.Load(name)
	if err != nil {
		c.log.Error("failed to load configuration, starting empty", "menu", name, "error", err)
	}
	store := c.prepare(name, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = strings.TrimSpace(name)
	c.store = store
	c.dirty = false
	c.log.Info("configuration loaded", "menu", c.name, "items", store.Len())
	return err
}

// prepare builds a store satisfying the structural invariants from raw items.
func (c *Controller) prepare(name string, items []menu.Item) *menu.Store {
	store := menu.NewStore(items)
	if demoted := menu.Repair(store); len(demoted) > 0 {
		c.log.Warn("option boxes without a valid owner were detached", "menu", name, "count", len(demoted))
	}
	if err := menu.Normalize(store); err != nil {
		c.log.Error("failed to normalize configuration, starting empty", "menu", name, "error", err)
		return menu.NewStore(nil)
	}
	return store
}

// Merge appends the items of another configuration.
func (c *Controller) Merge(name string) (int, error) {
	items, err := c.repo.Load(name)
	if err != nil {
		c.log.Error("failed to load configuration for merge", "menu", name, "error", err)
		return 0, err
	}
	err = c.gesture(GestureMerge, func(s *menu.Store) error {
		for _, it := range items {
			s.Append(it)
		}
		menu.Repair(s)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Save writes the store under the loaded configuration name.
func (c *Controller) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.name == "" {
		return ErrNoConfiguration
	}
	return c.saveLocked(c.name)
}

// SaveAs writes the store under name and makes it the loaded configuration.
func (c *Controller) SaveAs(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.saveLocked(name); err != nil {
		return err
	}
	c.name = strings.TrimSpace(name)
	return nil
}

func (c *Controller) saveLocked(name string) error {
	items := c.store.Items()
	if err := c.repo.Save(name, items); err != nil {
		c.log.Error("failed to save configuration", "menu", name, "error", err)
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	c.dirty = false
	c.log.Info("configuration saved", "menu", name, "items", len(items))
	return nil
}

// Build clears the menus of the previous build and materializes the store.
func (c *Controller) Build() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.engine.Rebuild(c.store.Items())
	c.metrics.Builds.Increment(string(c.layout))
	c.log.Info("menu built", "menu", c.name, "items", n, "layout", c.layout)
	return n
}

// gesture runs fn against a copy of the store and commits the copy when fn
// succeeds and the structural invariants still hold.
func (c *Controller) gesture(name string, fn func(s *menu.Store) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := c.store.Clone()
	err := fn(work)
	if err == nil {
		err = menu.Normalize(work)
	}
	if err == nil {
		err = menu.CheckInvariants(work)
	}
	if err == nil {
		err = menu.CheckNewConflicts(c.store, work)
	}
	if err != nil {
		c.observe(name, err)
		return err
	}

	c.store = work
	c.dirty = true
	c.metrics.Gestures.Increment(name, "ok")
	c.log.Info("gesture committed", "gesture", name, "items", work.Len())
	return nil
}

func (c *Controller) observe(name string, err error) {
	if r, ok := menu.AsRejection(err); ok {
		c.metrics.Gestures.Increment(name, "rejected")
		c.metrics.Rejections.Increment(string(r.Code))
		c.log.Warn("gesture rejected",
			"gesture", name,
			"code", r.Code,
			"reason", r.Reason,
			"label", r.Label,
			"path", r.Path)
		return
	}
	c.metrics.Gestures.Increment(name, "failed")
	if errors.Is(err, menu.ErrCorruptTree) || errors.Is(err, menu.ErrInvariant) {
		c.log.Error("gesture aborted", "gesture", name, "error", err)
		return
	}
	c.log.Warn("gesture failed", "gesture", name, "error", err)
}
