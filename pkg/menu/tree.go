package menu

import (
	"fmt"
	"slices"
	"strings"
)

// NodeKind distinguishes inferred folders from record-backed leaves.
type NodeKind int

const (
	FolderNode NodeKind = iota
	LeafNode
)

func (k NodeKind) String() string {
	if k == LeafNode {
		return "leaf"
	}
	return "folder"
}

// Decoration is the display hint of a leaf.
type Decoration int

const (
	DecorNone Decoration = iota
	DecorOptionBox
	DecorDivider
)

// Node is an element of the displayed hierarchy. Leaves reference their record
// by ID only; reading a record always goes through the Store.
type Node struct {
	Kind       NodeKind
	Name       string
	Item       ID
	Decoration Decoration

	parent   *Node
	children []*Node
}

// Parent returns nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in display order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// IsRoot reports whether n is the invisible top-level node.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// IsFolder reports whether children may be attached to n.
func (n *Node) IsFolder() bool {
	return n.Kind == FolderNode
}

// Path is the resolved path of the node including its own name.
func (n *Node) Path() Segments {
	if n.IsRoot() {
		return nil
	}
	return n.parent.Path().Child(n.Name)
}

// Dir is the resolved path of the node's parent.
func (n *Node) Dir() Segments {
	if n.IsRoot() {
		return nil
	}
	return n.parent.Path()
}

// Index returns the position of n among its siblings.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	return slices.Index(n.parent.children, n)
}

// PrevSibling returns the sibling displayed directly above n.
func (n *Node) PrevSibling() *Node {
	idx := n.Index()
	if idx <= 0 {
		return nil
	}
	return n.parent.children[idx-1]
}

// NextSibling returns the sibling displayed directly below n.
func (n *Node) NextSibling() *Node {
	idx := n.Index()
	if idx < 0 || idx+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[idx+1]
}

// Contains reports whether o is n or one of its descendants.
func (n *Node) Contains(o *Node) bool {
	for p := o; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Leaves returns the record IDs of n and every leaf below it.
func (n *Node) Leaves() []ID {
	if n.Kind == LeafNode {
		return []ID{n.Item}
	}
	var ids []ID
	for _, ch := range n.children {
		ids = append(ids, ch.Leaves()...)
	}
	return ids
}

// Display returns the decorated label shown by an editing surface.
func (n *Node) Display() string {
	switch {
	case n.IsRoot():
		return ""
	case n.Kind == FolderNode:
		return n.Name + PathSeparator
	case n.Decoration == DecorDivider:
		return "---"
	case n.Decoration == DecorOptionBox:
		return "(□) " + n.Name
	}
	return n.Name
}

func (n *Node) lastDescendant() *Node {
	for len(n.children) > 0 {
		n = n.children[len(n.children)-1]
	}
	return n
}

// Ref identifies either a record or a folder in a projected tree.
type Ref struct {
	ID     ID     `json:"id,omitempty"`
	Folder string `json:"folder,omitempty"`
}

// ItemRef references a record.
func ItemRef(id ID) Ref {
	return Ref{ID: id}
}

// FolderRef references a folder by its path.
func FolderRef(path string) Ref {
	return Ref{Folder: path}
}

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool {
	return r.ID == NoID && r.Folder == ""
}

func (r Ref) String() string {
	if r.ID != NoID {
		return fmt.Sprintf("item:%d", r.ID)
	}
	return "folder:" + r.Folder
}

// Tree is the displayed hierarchy projected from a Store. It is a disposable
// view: callers rebuild it after every committed change.
type Tree struct {
	root   *Node
	leaves map[ID]*Node
}

// Project builds the hierarchy of s. Folders are created for every unseen
// path prefix, leaves are attached in list order.
func Project(s *Store) *Tree {
	t := &Tree{
		root:   &Node{Kind: FolderNode},
		leaves: make(map[ID]*Node, s.Len()),
	}
	cache := map[string]*Node{"": t.root}

	for _, e := range s.Entries() {
		parent := t.root
		var prefix Segments
		for _, seg := range e.Item.Segments() {
			prefix = prefix.Child(seg)
			key := prefix.Key()
			node, ok := cache[key]
			if !ok {
				node = &Node{Kind: FolderNode, Name: seg}
				attach(parent, node, len(parent.children))
				cache[key] = node
			}
			parent = node
		}

		leaf := &Node{Kind: LeafNode, Name: e.Item.Label, Item: e.ID}
		switch {
		case e.Item.IsSeparator():
			leaf.Decoration = DecorDivider
		case e.Item.IsOptionBox:
			leaf.Decoration = DecorOptionBox
		}
		attach(parent, leaf, len(parent.children))
		t.leaves[e.ID] = leaf
	}
	return t
}

func attach(parent, n *Node, idx int) {
	n.parent = parent
	parent.children = slices.Insert(parent.children, idx, n)
}

// Root returns the invisible top-level node.
func (t *Tree) Root() *Node {
	return t.root
}

// Leaf returns the node of a record.
func (t *Tree) Leaf(id ID) (*Node, bool) {
	n, ok := t.leaves[id]
	return n, ok
}

// Folder returns the folder at path. The empty path is the root.
func (t *Tree) Folder(path Segments) (*Node, bool) {
	n := t.root
	for _, seg := range path {
		next := childFolder(n, seg)
		if next == nil {
			return nil, false
		}
		n = next
	}
	return n, true
}

func childFolder(n *Node, name string) *Node {
	for _, c := range n.children {
		if c.Kind == FolderNode && c.Name == name {
			return c
		}
	}
	return nil
}

// Resolve finds the node referenced by ref.
func (t *Tree) Resolve(ref Ref) (*Node, error) {
	if ref.ID != NoID {
		if n, ok := t.Leaf(ref.ID); ok {
			return n, nil
		}
		return nil, fmt.Errorf("resolve %s: %w", ref, ErrNotFound)
	}
	path := ParsePath(ref.Folder)
	if len(path) == 0 {
		return nil, fmt.Errorf("resolve %s: %w", ref, ErrNotFound)
	}
	if n, ok := t.Folder(path); ok {
		return n, nil
	}
	return nil, fmt.Errorf("resolve %s: %w", ref, ErrNotFound)
}

// Walk visits every node below the root depth-first in display order.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for _, c := range n.children {
			fn(c, depth)
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
}

// Predecessor returns the node displayed directly above n when every folder is
// expanded. It returns nil for the first node of the tree.
func (t *Tree) Predecessor(n *Node) *Node {
	if n.IsRoot() {
		return nil
	}
	if prev := n.PrevSibling(); prev != nil {
		return prev.lastDescendant()
	}
	if n.parent.IsRoot() {
		return nil
	}
	return n.parent
}

// EnsureFolder returns the folder at path, appending missing folders.
func (t *Tree) EnsureFolder(path Segments) *Node {
	n := t.root
	for _, seg := range path {
		next := childFolder(n, seg)
		if next == nil {
			next = &Node{Kind: FolderNode, Name: seg}
			attach(n, next, len(n.children))
		}
		n = next
	}
	return n
}

// Detach removes n and its subtree from the hierarchy.
func (t *Tree) Detach(n *Node) {
	if n.parent == nil {
		return
	}
	idx := n.Index()
	n.parent.children = slices.Delete(n.parent.children, idx, idx+1)
	n.parent = nil
}

// InsertBefore moves n directly above ref.
func (t *Tree) InsertBefore(n, ref *Node) error {
	return t.insertAt(n, ref, 0)
}

// InsertAfter moves n directly below ref.
func (t *Tree) InsertAfter(n, ref *Node) error {
	return t.insertAt(n, ref, 1)
}

func (t *Tree) insertAt(n, ref *Node, offset int) error {
	if ref.IsRoot() || n.Contains(ref) {
		return fmt.Errorf("move %q next to %q: %w", n.Name, ref.Name, ErrCorruptTree)
	}
	t.Detach(n)
	attach(ref.parent, n, ref.Index()+offset)
	return nil
}

// AppendChild moves n to the end of folder.
func (t *Tree) AppendChild(folder, n *Node) error {
	if folder.Kind != FolderNode || n.Contains(folder) {
		return fmt.Errorf("move %q into %q: %w", n.Name, folder.Name, ErrCorruptTree)
	}
	t.Detach(n)
	attach(folder, n, len(folder.children))
	return nil
}

// Rename changes the display name of a folder node.
func (t *Tree) Rename(n *Node, name string) error {
	if n.IsRoot() || n.Kind != FolderNode || strings.TrimSpace(name) == "" || strings.Contains(name, PathSeparator) {
		return fmt.Errorf("rename %q to %q: %w", n.Name, name, ErrCorruptTree)
	}
	n.Name = strings.TrimSpace(name)
	return nil
}

// String renders the hierarchy as an indented outline.
func (t *Tree) String() string {
	var b strings.Builder
	t.Walk(func(n *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Display())
		b.WriteByte('\n')
	})
	return b.String()
}
