package host

import (
	"fmt"
	"strings"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

// Recorder is a host that records every call as a line of text. Handles are
// numbered in creation order so identical builds produce identical traces.
type Recorder struct {
	Calls []string
	seq   int
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// CreateTopLevel implements menu.Host.
func (r *Recorder) CreateTopLevel(label string) menu.Handle {
	r.seq++
	h := menu.Handle(fmt.Sprintf("h%d", r.seq))
	r.record("createTopLevel(%q) -> %s", label, h)
	return h
}

// CreateSubmenu implements menu.Host.
func (r *Recorder) CreateSubmenu(parent menu.Handle, label string) menu.Handle {
	r.seq++
	h := menu.Handle(fmt.Sprintf("h%d", r.seq))
	r.record("createSubmenu(%s, %q) -> %s", parent, label, h)
	return h
}

// CreateLeaf implements menu.Host.
func (r *Recorder) CreateLeaf(parent menu.Handle, leaf menu.Leaf) {
	r.record("createLeaf(%s, %q, %s, %q, %q, %t)", parent, leaf.Label, leaf.Kind, leaf.Command, leaf.Icon, leaf.OptionBox)
}

// CreateDivider implements menu.Host.
func (r *Recorder) CreateDivider(parent menu.Handle) {
	r.record("createDivider(%s)", parent)
}

// DestroyTopLevel implements menu.Host.
func (r *Recorder) DestroyTopLevel(h menu.Handle) {
	r.record("destroyTopLevel(%s)", h)
}

// Reset forgets recorded calls and restarts handle numbering.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.seq = 0
}

func (r *Recorder) String() string {
	return strings.Join(r.Calls, "\n")
}
