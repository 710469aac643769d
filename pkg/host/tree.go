package host

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

// EntryKind is the kind of a materialized menu entry.
type EntryKind string

const (
	KindSubmenu EntryKind = "submenu"
	KindCommand EntryKind = "command"
	KindDivider EntryKind = "divider"
)

// Menu represents a materialized top-level menu.
type Menu struct {
	// Handle is the reference returned to the build engine.
	Handle menu.Handle `json:"handle"`

	// Title is the label shown on the menu bar.
	Title string `json:"title"`

	// Items are the entries of the menu.
	Items []*Entry `json:"items,omitempty"`
}

// Entry represents a single entry of a materialized menu, which may contain sub-entries.
type Entry struct {
	// Kind is submenu, command or divider.
	Kind EntryKind `json:"kind"`

	// Handle is set for submenus only.
	Handle menu.Handle `json:"handle,omitempty"`

	// Title is the label of the entry. Dividers have none.
	Title string `json:"title,omitempty"`

	// CommandKind is the interpreter of Command.
	CommandKind menu.CommandKind `json:"commandKind,omitempty"`

	// Command is executed when the entry is activated.
	Command string `json:"command,omitempty"`

	// Icon is an optional icon reference.
	Icon string `json:"icon,omitempty"`

	// OptionBox marks the entry as the option box of the entry before it.
	OptionBox bool `json:"optionBox,omitempty"`

	// Items are the entries of a submenu.
	Items []*Entry `json:"items,omitempty"`
}

// Tree is an in-memory host that materializes menus as a JSON-serializable
// model. It is safe for concurrent use; readers get deep copies.
type Tree struct {
	mu      sync.RWMutex
	menus   []*Menu
	parents map[menu.Handle]*[]*Entry
	seq     int
}

// NewTree returns an empty host.
func NewTree() *Tree {
	return &Tree{parents: make(map[menu.Handle]*[]*Entry)}
}

func (t *Tree) handle(prefix string) menu.Handle {
	t.seq++
	return menu.Handle(fmt.Sprintf("%s-%d", prefix, t.seq))
}

func (t *Tree) children(parent menu.Handle) *[]*Entry {
	if items, ok := t.parents[parent]; ok {
		return items
	}
	slog.Warn("unknown parent handle, entry dropped", "handle", parent)
	return &[]*Entry{}
}

// CreateTopLevel implements menu.Host.
func (t *Tree) CreateTopLevel(label string) menu.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := &Menu{Handle: t.handle("menu"), Title: label}
	t.menus = append(t.menus, m)
	t.parents[m.Handle] = &m.Items
	return m.Handle
}

// CreateSubmenu implements menu.Host.
func (t *Tree) CreateSubmenu(parent menu.Handle, label string) menu.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := &Entry{Kind: KindSubmenu, Handle: t.handle("submenu"), Title: label}
	items := t.children(parent)
	*items = append(*items, e)
	t.parents[e.Handle] = &e.Items
	return e.Handle
}

// CreateLeaf implements menu.Host.
func (t *Tree) CreateLeaf(parent menu.Handle, leaf menu.Leaf) {
	t.mu.Lock()
	defer t.mu.Unlock()

	items := t.children(parent)
	*items = append(*items, &Entry{
		Kind:        KindCommand,
		Title:       leaf.Label,
		CommandKind: leaf.Kind,
		Command:     leaf.Command,
		Icon:        leaf.Icon,
		OptionBox:   leaf.OptionBox,
	})
}

// CreateDivider implements menu.Host.
func (t *Tree) CreateDivider(parent menu.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	items := t.children(parent)
	*items = append(*items, &Entry{Kind: KindDivider})
}

// DestroyTopLevel implements menu.Host.
func (t *Tree) DestroyTopLevel(h menu.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := slices.IndexFunc(t.menus, func(m *Menu) bool { return m.Handle == h })
	if idx < 0 {
		return
	}
	var forget func(items []*Entry)
	forget = func(items []*Entry) {
		for _, e := range items {
			if e.Kind == KindSubmenu {
				delete(t.parents, e.Handle)
				forget(e.Items)
			}
		}
	}
	forget(t.menus[idx].Items)
	delete(t.parents, h)
	t.menus = slices.Delete(t.menus, idx, idx+1)
}

// Menus returns a deep copy of the materialized menus.
func (t *Tree) Menus() []*Menu {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Menu, len(t.menus))
	for i, m := range t.menus {
		out[i] = &Menu{Handle: m.Handle, Title: m.Title, Items: copyEntries(m.Items)}
	}
	return out
}

func copyEntries(items []*Entry) []*Entry {
	if items == nil {
		return nil
	}
	out := make([]*Entry, len(items))
	for i, e := range items {
		cp := *e
		cp.Items = copyEntries(e.Items)
		out[i] = &cp
	}
	return out
}

// Handler returns an HTTP handler that responds with the materialized menus as JSON.
func (t *Tree) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("handling menu request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(t.Menus()); err != nil {
			slog.Error("failed to encode menu", "error", err)
			return
		}
	})
}
