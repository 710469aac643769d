package menu

import (
	"slices"
	"sort"
)

// Handle is an opaque reference to a menu object created by a Host.
type Handle string

// Leaf carries everything a Host needs to create a command item.
type Leaf struct {
	Label     string      `json:"label"`
	Kind      CommandKind `json:"kind"`
	Command   string      `json:"command"`
	Icon      string      `json:"icon,omitempty"`
	OptionBox bool        `json:"optionBox,omitempty"`
}

// Host is the menu API of the application the menu is materialized in.
type Host interface {
	// CreateTopLevel creates a menu on the host's main menu bar.
	CreateTopLevel(label string) Handle

	// CreateSubmenu creates a cascading submenu under parent.
	CreateSubmenu(parent Handle, label string) Handle

	// CreateLeaf creates a command item under parent.
	CreateLeaf(parent Handle, leaf Leaf)

	// CreateDivider creates a separator under parent.
	CreateDivider(parent Handle)

	// DestroyTopLevel removes a top-level menu and everything below it.
	DestroyTopLevel(h Handle)
}

// Registry remembers top-level handles created by previous builds so that a
// rebuild can remove them first.
type Registry interface {
	Handles() []Handle
	Add(h Handle)
	Reset()
}

// Layout selects how the first path segment is materialized.
type Layout string

const (
	// LayoutRooted puts the whole configuration below a single top-level menu.
	LayoutRooted Layout = "rooted"

	// LayoutMenubar makes every first path segment a top-level menu.
	LayoutMenubar Layout = "menubar"
)

// Engine drives a Host from a canonical list.
type Engine struct {
	host      Host
	registry  Registry
	layout    Layout
	rootLabel string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLayout sets the layout. Defaults to LayoutRooted.
func WithLayout(l Layout) EngineOption {
	return func(e *Engine) {
		if l != "" {
			e.layout = l
		}
	}
}

// WithRootLabel sets the label of the top-level menu holding top-level items.
func WithRootLabel(label string) EngineOption {
	return func(e *Engine) { e.rootLabel = label }
}

// NewEngine returns an engine building into host and recording top-level
// handles in registry.
func NewEngine(host Host, registry Registry, opts ...EngineOption) *Engine {
	e := &Engine{host: host, registry: registry, layout: LayoutRooted}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clear destroys every top-level menu created by previous builds.
func (e *Engine) Clear() {
	for _, h := range e.registry.Handles() {
		e.host.DestroyTopLevel(h)
	}
	e.registry.Reset()
}

// Rebuild clears previous menus and builds items.
func (e *Engine) Rebuild(items []Item) int {
	e.Clear()
	return e.Build(items)
}

// Build materializes items sorted by Order and returns the number of records
// emitted. Build never removes anything; use Rebuild.
func (e *Engine) Build(items []Item) int {
	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	cache := make(map[string]Handle)
	for _, it := range sorted {
		parent := e.parent(cache, it.Segments())
		if it.IsSeparator() {
			e.host.CreateDivider(parent)
			continue
		}
		kind, cmd := it.ResolveCommand()
		e.host.CreateLeaf(parent, Leaf{
			Label:     it.Label,
			Kind:      kind,
			Command:   cmd,
			Icon:      it.Icon,
			OptionBox: it.IsOptionBox,
		})
	}
	return len(sorted)
}

// parent returns the handle for path, creating and caching every missing prefix.
func (e *Engine) parent(cache map[string]Handle, path Segments) Handle {
	if h, ok := cache[path.Key()]; ok {
		return h
	}

	var (
		h      Handle
		prefix Segments
	)
	if e.layout == LayoutRooted || len(path) == 0 {
		h = e.root(cache)
	}
	for i, seg := range path {
		prefix = prefix.Child(seg)
		key := prefix.Key()
		if cached, ok := cache[key]; ok {
			h = cached
			continue
		}
		if i == 0 && e.layout == LayoutMenubar {
			h = e.topLevel(seg)
		} else {
			h = e.host.CreateSubmenu(h, seg)
		}
		cache[key] = h
	}
	return h
}

func (e *Engine) root(cache map[string]Handle) Handle {
	if h, ok := cache[""]; ok {
		return h
	}
	h := e.topLevel(e.rootLabel)
	cache[""] = h
	return h
}

func (e *Engine) topLevel(label string) Handle {
	h := e.host.CreateTopLevel(label)
	e.registry.Add(h)
	return h
}
