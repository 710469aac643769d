package menu

import "fmt"

// Flatten walks t depth-first in display order and returns the placement of
// every leaf. A leaf is placed at the accumulated path of its ancestors, not at
// its previously stored path. Children of any node, folder or leaf, are walked
// with the node's own resolved path as the seed.
func Flatten(t *Tree) ([]Placement, error) {
	var (
		out  []Placement
		seen = make(map[ID]bool)
	)

	var walk func(n *Node, seed Segments) error
	walk = func(n *Node, seed Segments) error {
		for _, c := range n.children {
			if c.parent != n {
				return fmt.Errorf("node %q detached from %q: %w", c.Name, n.Name, ErrCorruptTree)
			}
			if c.Kind == LeafNode {
				if c.Item == NoID || seen[c.Item] {
					return fmt.Errorf("leaf %q has no unique record: %w", c.Name, ErrCorruptTree)
				}
				seen[c.Item] = true
				out = append(out, Placement{ID: c.Item, Path: seed})
			}
			if len(c.children) == 0 {
				continue
			}
			if c.Name == "" {
				return fmt.Errorf("node under %q has no resolvable path: %w", seed, ErrCorruptTree)
			}
			if err := walk(c, seed.Child(c.Name)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(t.root, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Sync flattens t into s. It is the only way positions of records change.
func Sync(s *Store, t *Tree) error {
	placements, err := Flatten(t)
	if err != nil {
		return err
	}
	return s.Commit(placements)
}

// Normalize runs one project/flatten round trip over s. Afterwards s is a fixed
// point of the round trip.
func Normalize(s *Store) error {
	return Sync(s, Project(s))
}
