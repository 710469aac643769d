package menu

import (
	"fmt"
	"slices"
)

// Position is where a dragged node was released relative to its target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
	Onto   Position = "onto"
)

// Drop is a completed drag-and-drop gesture. A zero Target means the node was
// released on empty space below the top level.
type Drop struct {
	Source   Ref      `json:"source"`
	Target   Ref      `json:"target"`
	Position Position `json:"position"`
}

// Move is a legal relocation derived from a Drop. It is one of Reorder,
// Reparent or PromoteToSatellite.
type Move interface {
	source() *Node
}

// Reorder places Source directly before or after a sibling Target.
type Reorder struct {
	Source *Node
	Target *Node
	After  bool
}

// Reparent appends Source as the last child of Folder.
type Reparent struct {
	Source *Node
	Folder *Node
}

// PromoteToSatellite attaches Source as the option box of Owner.
type PromoteToSatellite struct {
	Source *Node
	Owner  *Node
}

func (m Reorder) source() *Node            { return m.Source }
func (m Reparent) source() *Node           { return m.Source }
func (m PromoteToSatellite) source() *Node { return m.Source }

// Resolver turns drops into moves against one projected tree.
type Resolver struct {
	store *Store
	tree  *Tree
}

// NewResolver returns a resolver over s and its displayed tree t.
func NewResolver(s *Store, t *Tree) *Resolver {
	return &Resolver{store: s, tree: t}
}

func (r *Resolver) item(n *Node) (Item, bool) {
	if n == nil || n.Kind != LeafNode {
		return Item{}, false
	}
	return r.store.Get(n.Item)
}

func (r *Resolver) isSatellite(n *Node) bool {
	it, ok := r.item(n)
	return ok && it.IsOptionBox
}

func (r *Resolver) ownsSatellite(n *Node) bool {
	if n == nil || n.Kind != LeafNode {
		return false
	}
	_, ok := r.store.SatelliteOf(n.Item)
	return ok
}

func (r *Resolver) invalid(n *Node, reason string) error {
	label, path := "", ""
	if n != nil {
		label, path = n.Name, n.Dir().String()
	}
	return reject(CodeInvalidDropTarget, reason, label, path)
}

// Resolve decides whether d is legal and which move it stands for. Nothing is
// mutated.
func (r *Resolver) Resolve(d Drop) (Move, error) {
	src, err := r.tree.Resolve(d.Source)
	if err != nil {
		return nil, err
	}

	if d.Target.IsZero() {
		if r.ownsSatellite(src) {
			return nil, r.invalid(src, "an item that owns an option box cannot be reparented")
		}
		if err := r.checkName(src, nil); err != nil {
			return nil, err
		}
		return Reparent{Source: src, Folder: r.tree.Root()}, nil
	}

	dst, err := r.tree.Resolve(d.Target)
	if err != nil {
		return nil, err
	}
	if src.Contains(dst) {
		return nil, r.invalid(src, "cannot drop an item onto itself or its own contents")
	}

	switch d.Position {
	case Before, After:
		return r.resolveReorder(src, dst, d.Position == After)
	case Onto:
		if dst.Kind == FolderNode {
			if r.ownsSatellite(src) {
				return nil, r.invalid(src, "an item that owns an option box cannot be reparented")
			}
			if err := r.checkName(src, dst.Path()); err != nil {
				return nil, err
			}
			return Reparent{Source: src, Folder: dst}, nil
		}
		return r.resolvePromotion(src, dst)
	}
	return nil, r.invalid(src, fmt.Sprintf("unknown drop position %q", d.Position))
}

func (r *Resolver) resolveReorder(src, dst *Node, after bool) (Move, error) {
	if after && r.ownsSatellite(dst) && !r.satelliteOf(dst, src) {
		return nil, r.invalid(dst, "cannot drop between an item and its option box")
	}
	if !after && r.isSatellite(dst) {
		return nil, r.invalid(dst, "cannot drop between an item and its option box")
	}
	if err := r.checkName(src, dst.Dir()); err != nil {
		return nil, err
	}
	return Reorder{Source: src, Target: dst, After: after}, nil
}

// checkName rejects a move that would give src a sibling of the same name in
// dir. A satellite is demoted by any move other than a promotion, so it is
// checked even within its own level.
func (r *Resolver) checkName(src *Node, dir Segments) error {
	v := NewValidator(r.store)
	if src.Kind == FolderNode {
		if dir.Equal(src.Dir()) {
			return nil
		}
		return v.NameConflict(src.Name, dir.String(), src.Leaves()...)
	}
	it, _ := r.store.Get(src.Item)
	if it.IsSeparator() || (!it.IsOptionBox && dir.Equal(src.Dir())) {
		return nil
	}
	return v.NameConflict(it.Label, dir.String(), src.Item)
}

func (r *Resolver) satelliteOf(owner, n *Node) bool {
	sat, ok := r.store.SatelliteOf(owner.Item)
	return ok && n.Kind == LeafNode && n.Item == sat
}

func (r *Resolver) resolvePromotion(src, dst *Node) (Move, error) {
	target, _ := r.item(dst)
	switch {
	case target.IsOptionBox:
		return nil, r.invalid(dst, "cannot drop onto an option box")
	case target.IsSeparator():
		return nil, r.invalid(dst, "a divider cannot own an option box")
	case r.ownsSatellite(dst):
		return nil, r.invalid(dst, "the target already owns an option box")
	}
	moved, ok := r.item(src)
	switch {
	case !ok:
		return nil, r.invalid(src, "a folder cannot become an option box")
	case moved.IsSeparator():
		return nil, r.invalid(src, "a divider cannot become an option box")
	case r.ownsSatellite(src):
		return nil, r.invalid(src, "an item that owns an option box cannot become one")
	}
	return PromoteToSatellite{Source: src, Owner: dst}, nil
}

// Apply performs m on the resolver's tree and commits the result to the store.
// The satellite of a moved owner follows it. A moved satellite that is not
// promoted again is detached from its former owner.
func (r *Resolver) Apply(m Move) error {
	src := m.source()

	var (
		owner     = NoID
		satellite = NoID
	)
	if src.Kind == LeafNode {
		if sat, ok := r.store.SatelliteOf(src.Item); ok {
			owner, satellite = src.Item, sat
		}
	}

	var err error
	switch mv := m.(type) {
	case Reorder:
		if mv.After {
			err = r.tree.InsertAfter(mv.Source, mv.Target)
		} else {
			err = r.tree.InsertBefore(mv.Source, mv.Target)
		}
	case Reparent:
		err = r.tree.AppendChild(mv.Folder, mv.Source)
	case PromoteToSatellite:
		err = r.tree.InsertAfter(mv.Source, mv.Owner)
	default:
		err = fmt.Errorf("unsupported move %T: %w", m, ErrCorruptTree)
	}
	if err != nil {
		return err
	}

	placements, err := Flatten(r.tree)
	if err != nil {
		return err
	}
	if satellite != NoID {
		placements, err = followOwner(placements, owner, satellite)
		if err != nil {
			return err
		}
	}
	if err := r.store.Commit(placements); err != nil {
		return err
	}

	if src.Kind != LeafNode {
		return nil
	}
	_, promote := m.(PromoteToSatellite)
	return r.store.Update(src.Item, func(it *Item) { it.IsOptionBox = promote })
}

// followOwner moves the satellite placement directly after its owner and gives
// it the owner's path.
func followOwner(placements []Placement, owner, satellite ID) ([]Placement, error) {
	si := slices.IndexFunc(placements, func(p Placement) bool { return p.ID == satellite })
	if si < 0 {
		return nil, fmt.Errorf("satellite %d missing from placements: %w", satellite, ErrCorruptTree)
	}
	out := slices.Delete(slices.Clone(placements), si, si+1)

	oi := slices.IndexFunc(out, func(p Placement) bool { return p.ID == owner })
	if oi < 0 {
		return nil, fmt.Errorf("owner %d missing from placements: %w", owner, ErrCorruptTree)
	}
	return slices.Insert(out, oi+1, Placement{ID: satellite, Path: out[oi].Path}), nil
}

// Relocate moves a record to the end of the folder at path, creating missing
// folders. Its satellite follows it; a relocated satellite is detached.
func Relocate(s *Store, id ID, path Segments) error {
	it, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("relocate %d: %w", id, ErrNotFound)
	}
	t := Project(s)
	leaf, ok := t.Leaf(id)
	if !ok {
		return fmt.Errorf("relocate %d: %w", id, ErrNotFound)
	}
	satellite, owns := s.SatelliteOf(id)

	if err := t.AppendChild(t.EnsureFolder(path), leaf); err != nil {
		return err
	}
	placements, err := Flatten(t)
	if err != nil {
		return err
	}
	if owns {
		if placements, err = followOwner(placements, id, satellite); err != nil {
			return err
		}
	}
	if err := s.Commit(placements); err != nil {
		return err
	}
	if it.IsOptionBox {
		return s.Update(id, func(it *Item) { it.IsOptionBox = false })
	}
	return nil
}
